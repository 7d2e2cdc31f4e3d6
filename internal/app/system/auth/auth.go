// Package auth guards the admin API with a cookie session.
//
// There is a single administrator account whose password is stored as a
// bcrypt hash in configuration. Signing in marks the session
// authenticated; every protected route checks that mark.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	isAuthKey     = "is_authenticated"
	signedInAtKey = "signed_in_at"
)

var (
	ErrNoPasswordConfigured = errors.New("no admin password hash configured")
	ErrWrongPassword        = errors.New("wrong password")
)

// Admin is what LoadSession injects into the request context.
type Admin struct {
	SignedInAt time.Time
}

type ctxKey string

const currentAdminKey ctxKey = "currentAdmin"

// CurrentAdmin returns the signed-in admin, if any.
func CurrentAdmin(r *http.Request) (*Admin, bool) {
	a, ok := r.Context().Value(currentAdminKey).(*Admin)
	return a, ok
}

// SessionManager owns the cookie store and the admin credential.
type SessionManager struct {
	store        *sessions.CookieStore
	name         string
	passwordHash []byte
	log          *zap.Logger
}

// NewSessionManager builds the cookie store. An empty sessionKey gets a
// random one, so sessions do not survive a restart; production config
// validation rejects that case before we get here.
//
// With secure=true cookies are Secure + SameSite=None; over plain-http
// localhost use secure=false so the browser accepts them.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if name == "" {
		return nil, errors.New("session name is empty")
	}
	key := []byte(sessionKey)
	switch {
	case len(key) == 0:
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, errors.New("could not generate a session key")
		}
		logger.Warn("session key not configured; using a random key (sessions reset on restart)")
	case len(key) < 32:
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetPasswordHash installs the admin bcrypt hash. An empty hash disables
// sign-in.
func (sm *SessionManager) SetPasswordHash(hash string) error {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		sm.passwordHash = nil
		sm.log.Warn("admin password hash not configured; sign-in is disabled")
		return nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return err
	}
	sm.passwordHash = []byte(hash)
	return nil
}

// CheckPassword compares password against the configured hash.
func (sm *SessionManager) CheckPassword(password string) error {
	if len(sm.passwordHash) == 0 {
		return ErrNoPasswordConfigured
	}
	if err := bcrypt.CompareHashAndPassword(sm.passwordHash, []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// SignIn marks the session authenticated. The old session values are
// dropped first so a pre-login cookie cannot be carried over.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, now time.Time) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{
		isAuthKey:     true,
		signedInAtKey: now.UTC().Unix(),
	}
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSession injects the admin into context when the session is signed in.
func (sm *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			// tampered or rotated-key cookie: treat as signed out
			sm.log.Debug("session decode failed", zap.Error(err))
		}
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			a := &Admin{}
			if ts, ok := sess.Values[signedInAtKey].(int64); ok {
				a.SignedInAt = time.Unix(ts, 0).UTC()
			}
			r = r.WithContext(context.WithValue(r.Context(), currentAdminKey, a))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects requests without an admin in context with a JSON
// 401 in the same envelope the handlers use.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentAdmin(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"code":    "unauthorized",
				"message": "Please sign in to continue.",
			},
		})
	})
}

// WithTestAdmin returns r with a signed-in admin in its context. It is for
// handler tests that bypass the cookie store.
func WithTestAdmin(r *http.Request) *http.Request {
	a := &Admin{SignedInAt: time.Now().UTC()}
	return r.WithContext(context.WithValue(r.Context(), currentAdminKey, a))
}
