// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/tutorhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination settings for Config fields.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls sign-in/sign-out events.
	Auth string
	// Admin controls student, group and ledger actions.
	Admin string
}

// Recorder persists events. *audit.Store implements it.
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store Recorder, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// ValidSetting reports whether s is one of all, db, log, off.
func ValidSetting(s string) bool {
	switch s {
	case All, DB, Log, Off:
		return true
	}
	return false
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.StudentID != nil {
		fields = append(fields, zap.String("student_id", event.StudentID.Hex()))
	}
	if event.GroupID != nil {
		fields = append(fields, zap.String("group_id", event.GroupID.Hex()))
	}
	if event.OpID != "" {
		fields = append(fields, zap.String("op_id", event.OpID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the category's setting.
// A nil Logger is a no-op so handlers can run without auditing in tests.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := All
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}

	if setting == Off {
		return
	}
	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) admin(ctx context.Context, r *http.Request, eventType string, studentID, groupID *primitive.ObjectID, opID string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		StudentID: studentID,
		GroupID:   groupID,
		OpID:      opID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	})
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		IP:            clientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
	})
}

func (l *Logger) Logout(ctx context.Context, r *http.Request) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- Student Events ---

func (l *Logger) StudentCreated(ctx context.Context, r *http.Request, studentID, groupID primitive.ObjectID) {
	l.admin(ctx, r, audit.EventStudentCreated, &studentID, &groupID, "", nil)
}

// StudentUpdated records an admin edit; fieldsChanged is a comma list.
func (l *Logger) StudentUpdated(ctx context.Context, r *http.Request, studentID primitive.ObjectID, fieldsChanged string) {
	l.admin(ctx, r, audit.EventStudentUpdated, &studentID, nil, "", map[string]string{"fields_changed": fieldsChanged})
}

func (l *Logger) StudentDeleted(ctx context.Context, r *http.Request, studentID primitive.ObjectID) {
	l.admin(ctx, r, audit.EventStudentDeleted, &studentID, nil, "", nil)
}

func (l *Logger) StudentPaidFlag(ctx context.Context, r *http.Request, studentID primitive.ObjectID, paid bool) {
	l.admin(ctx, r, audit.EventStudentPaidFlag, &studentID, nil, "", map[string]string{"paid": strconv.FormatBool(paid)})
}

// --- Group Events ---

func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, groupID primitive.ObjectID, name string) {
	l.admin(ctx, r, audit.EventGroupCreated, nil, &groupID, "", map[string]string{"name": name})
}

func (l *Logger) GroupUpdated(ctx context.Context, r *http.Request, groupID primitive.ObjectID, feeChanged bool) {
	l.admin(ctx, r, audit.EventGroupUpdated, nil, &groupID, "", map[string]string{"fee_changed": strconv.FormatBool(feeChanged)})
}

func (l *Logger) GroupArchived(ctx context.Context, r *http.Request, groupID primitive.ObjectID, intervals int) {
	l.admin(ctx, r, audit.EventGroupArchived, nil, &groupID, "", map[string]string{"fee_intervals": strconv.Itoa(intervals)})
}

func (l *Logger) GroupRestored(ctx context.Context, r *http.Request, groupID primitive.ObjectID) {
	l.admin(ctx, r, audit.EventGroupRestored, nil, &groupID, "", nil)
}

// --- Ledger Events ---

func (l *Logger) PresenceToggled(ctx context.Context, r *http.Request, studentID, groupID primitive.ObjectID, date, tm string, present bool, opID string) {
	l.admin(ctx, r, audit.EventPresenceToggled, &studentID, &groupID, opID, map[string]string{
		"date":    date,
		"time":    tm,
		"present": strconv.FormatBool(present),
	})
}

func (l *Logger) PaymentToggled(ctx context.Context, r *http.Request, studentID, groupID primitive.ObjectID, date, tm string, paid bool, opID string) {
	l.admin(ctx, r, audit.EventPaymentToggled, &studentID, &groupID, opID, map[string]string{
		"date": date,
		"time": tm,
		"paid": strconv.FormatBool(paid),
	})
}

// BalanceEdited records an admin override of a student's counters.
func (l *Logger) BalanceEdited(ctx context.Context, r *http.Request, studentID primitive.ObjectID, oldLessons, newLessons int, oldMontant, newMontant float64) {
	l.admin(ctx, r, audit.EventBalanceEdited, &studentID, nil, "", map[string]string{
		"old_lessons_attended": strconv.Itoa(oldLessons),
		"new_lessons_attended": strconv.Itoa(newLessons),
		"old_montant":          strconv.FormatFloat(oldMontant, 'f', 2, 64),
		"new_montant":          strconv.FormatFloat(newMontant, 'f', 2, 64),
	})
}

func (l *Logger) BalanceReconciled(ctx context.Context, r *http.Request, studentID primitive.ObjectID, drift, applied bool) {
	l.admin(ctx, r, audit.EventBalanceReconciled, &studentID, nil, "", map[string]string{
		"drift":   strconv.FormatBool(drift),
		"applied": strconv.FormatBool(applied),
	})
}
