package groups_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	"github.com/dalemusser/tutorhub/internal/app/features/groups"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	"github.com/dalemusser/tutorhub/internal/app/system/auth"
	"github.com/dalemusser/tutorhub/internal/app/system/bookkeeping"
	"github.com/dalemusser/tutorhub/internal/domain/ledger"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"github.com/dalemusser/tutorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeGroups struct {
	m map[primitive.ObjectID]models.Group
}

func (f *fakeGroups) GetByID(_ context.Context, id primitive.ObjectID) (models.Group, error) {
	g, ok := f.m[id]
	if !ok {
		return models.Group{}, groupstore.ErrNotFound
	}
	return g, nil
}

func (f *fakeGroups) List(context.Context) ([]models.Group, error) {
	out := make([]models.Group, 0, len(f.m))
	for _, g := range f.m {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeGroups) Create(_ context.Context, g models.Group) (models.Group, error) {
	g.ID = primitive.NewObjectID()
	f.m[g.ID] = g
	return g, nil
}

type fakeLedger struct {
	groups     *fakeGroups
	updated    *models.Group
	feeChanged bool
	archived   []models.ArchivedGroup
	restoreErr error
	quote      bookkeeping.FeeQuote
}

func (f *fakeLedger) UpdateGroup(_ context.Context, g models.Group) (bool, error) {
	if _, ok := f.groups.m[g.ID]; !ok {
		return false, bookkeeping.ErrGroupNotFound
	}
	f.updated = &g
	f.groups.m[g.ID] = g
	return f.feeChanged, nil
}

func (f *fakeLedger) ArchiveAndDeleteGroup(_ context.Context, id primitive.ObjectID) (models.ArchivedGroup, error) {
	g, ok := f.groups.m[id]
	if !ok {
		return models.ArchivedGroup{}, bookkeeping.ErrGroupNotFound
	}
	delete(f.groups.m, id)
	now := time.Now().UTC()
	a := models.ArchivedGroup{ID: id, Name: g.Name, FeePerSession: g.FeePerSession, DeletedAt: &now,
		FeeHistory: []models.FeeInterval{{FeePerSession: g.FeePerSession, ValidFrom: g.CreatedAt, ValidTo: now}}}
	f.archived = append(f.archived, a)
	return a, nil
}

func (f *fakeLedger) FeeForDate(_ context.Context, id primitive.ObjectID, date string) (bookkeeping.FeeQuote, error) {
	q := f.quote
	q.GroupID, q.Date = id, date
	return q, nil
}

func (f *fakeLedger) ArchivedGroups(context.Context) ([]models.ArchivedGroup, error) {
	return f.archived, nil
}

func (f *fakeLedger) RestoreGroup(_ context.Context, id primitive.ObjectID) (models.Group, error) {
	if f.restoreErr != nil {
		return models.Group{}, f.restoreErr
	}
	return models.Group{ID: id, Name: "Maths", FeePerSession: 20}, nil
}

func newHandler(t *testing.T) (*groups.Handler, *fakeGroups, *fakeLedger) {
	t.Helper()
	fg := &fakeGroups{m: map[primitive.ObjectID]models.Group{}}
	fl := &fakeLedger{groups: fg}
	return &groups.Handler{
		Groups: fg,
		Ledger: fl,
		ErrLog: uierrors.NewErrorLogger(zap.NewNop()),
		Log:    zap.NewNop(),
	}, fg, fl
}

func validBody() map[string]any {
	return map[string]any{
		"name":          "Maths 3e",
		"feePerSession": 20,
		"description":   "<script>x()</script>Révisions",
		"schedule":      []map[string]string{{"day": "Monday", "time": "9:30"}},
	}
}

func TestHandleCreateGroup(t *testing.T) {
	h, fg, _ := newHandler(t)
	rec := testutil.NewRecorder()
	h.HandleCreateGroup(rec, testutil.NewAdminRequest("POST", "/groups", validBody()))
	rec.AssertStatus(t, http.StatusCreated)

	var g models.Group
	rec.Decode(t, &g)
	if g.Schedule[0].Day != models.Monday || g.Schedule[0].Time != "09:30" {
		t.Errorf("schedule not normalized: %+v", g.Schedule)
	}
	if g.Description != "Révisions" {
		t.Errorf("description = %q", g.Description)
	}
	if len(fg.m) != 1 {
		t.Errorf("groups stored = %d", len(fg.m))
	}
}

func TestHandleCreateGroup_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(map[string]any)
		wantField string
	}{
		{"zero fee", func(b map[string]any) { b["feePerSession"] = 0 }, "FeePerSession"},
		{"negative fee", func(b map[string]any) { b["feePerSession"] = -5 }, "FeePerSession"},
		{"no schedule", func(b map[string]any) { b["schedule"] = []map[string]string{} }, "Schedule"},
		{"bad day", func(b map[string]any) { b["schedule"] = []map[string]string{{"day": "lundi", "time": "10:00"}} }, "Schedule[0].Day"},
		{"bad time", func(b map[string]any) { b["schedule"] = []map[string]string{{"day": "monday", "time": "25:00"}} }, "Schedule[0].Time"},
		{"duplicate slot", func(b map[string]any) {
			b["schedule"] = []map[string]string{{"day": "monday", "time": "10:00"}, {"day": "Monday", "time": "10:00"}}
		}, "Schedule"},
		{"missing name", func(b map[string]any) { b["name"] = "  " }, "Name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fg, _ := newHandler(t)
			body := validBody()
			tt.mutate(body)
			rec := testutil.NewRecorder()
			h.HandleCreateGroup(rec, testutil.NewAdminRequest("POST", "/groups", body))
			rec.AssertStatus(t, http.StatusBadRequest)

			var b uierrors.Body
			rec.Decode(t, &b)
			if _, ok := b.Error.Fields[tt.wantField]; !ok {
				t.Errorf("fields = %v, want %q", b.Error.Fields, tt.wantField)
			}
			if len(fg.m) != 0 {
				t.Error("invalid group stored")
			}
		})
	}
}

func TestHandleEditGroup(t *testing.T) {
	h, fg, fl := newHandler(t)
	g := models.Group{ID: primitive.NewObjectID(), Name: "Maths", FeePerSession: 20, Schedule: []models.ScheduleEntry{{Day: "monday", Time: "10:00"}}}
	fg.m[g.ID] = g
	fl.feeChanged = true

	body := validBody()
	body["feePerSession"] = 25
	req := testutil.WithChiURLParam(testutil.NewAdminRequest("PUT", "/groups/"+g.ID.Hex(), body), "id", g.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleEditGroup(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	if fl.updated == nil || fl.updated.FeePerSession != 25 || fl.updated.ID != g.ID {
		t.Fatalf("ledger update = %+v", fl.updated)
	}
	rec.AssertContains(t, `"feeChanged":true`)

	missing := primitive.NewObjectID().Hex()
	req = testutil.WithChiURLParam(testutil.NewAdminRequest("PUT", "/groups/"+missing, validBody()), "id", missing)
	rec = testutil.NewRecorder()
	h.HandleEditGroup(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleDeleteAndArchivedList(t *testing.T) {
	h, fg, _ := newHandler(t)
	g := models.Group{ID: primitive.NewObjectID(), Name: "Chimie", FeePerSession: 15}
	fg.m[g.ID] = g

	req := testutil.WithChiURLParam(testutil.NewAdminRequest("DELETE", "/groups/"+g.ID.Hex(), nil), "id", g.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleDeleteGroup(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	if _, ok := fg.m[g.ID]; ok {
		t.Error("group not deleted")
	}

	rec = testutil.NewRecorder()
	h.ServeArchivedList(rec, testutil.NewAdminRequest("GET", "/groups/archived", nil))
	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		Groups []models.ArchivedGroup `json:"groups"`
	}
	rec.Decode(t, &resp)
	if len(resp.Groups) != 1 || resp.Groups[0].FeePerSession != 15 {
		t.Errorf("archived = %+v", resp.Groups)
	}

	rec = testutil.NewRecorder()
	h.HandleDeleteGroup(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleRestoreGroup(t *testing.T) {
	h, _, fl := newHandler(t)
	id := primitive.NewObjectID().Hex()
	req := testutil.WithChiURLParam(testutil.NewAdminRequest("POST", "/groups/archived/"+id+"/restore", nil), "id", id)

	rec := testutil.NewRecorder()
	h.HandleRestoreGroup(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	fl.restoreErr = bookkeeping.ErrGroupLive
	rec = testutil.NewRecorder()
	h.HandleRestoreGroup(rec, req)
	rec.AssertStatus(t, http.StatusConflict)
	if rec.ErrorCode() != uierrors.CodeConflict {
		t.Errorf("code = %q", rec.ErrorCode())
	}
}

func TestServeFeeForDate(t *testing.T) {
	h, _, fl := newHandler(t)
	fl.quote = bookkeeping.FeeQuote{Fee: 15, Source: ledger.FeeInterval}
	id := primitive.NewObjectID().Hex()

	req := testutil.WithChiURLParam(testutil.NewAdminRequest("GET", "/groups/"+id+"/fee?date=2025-03-03", nil), "id", id)
	rec := testutil.NewRecorder()
	h.ServeFeeForDate(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var q bookkeeping.FeeQuote
	rec.Decode(t, &q)
	if q.Fee != 15 || q.Source != ledger.FeeInterval || q.Date != "2025-03-03" {
		t.Errorf("quote = %+v", q)
	}

	req = testutil.WithChiURLParam(testutil.NewAdminRequest("GET", "/groups/"+id+"/fee?date=march", nil), "id", id)
	rec = testutil.NewRecorder()
	h.ServeFeeForDate(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestRoutes_ArchivedIsNotAnID(t *testing.T) {
	h, _, _ := newHandler(t)
	sm, err := auth.NewSessionManager("", "tutorhub-test", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	router := groups.Routes(h, sm)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAdminRequest("GET", "/archived", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"groups"`)
}
