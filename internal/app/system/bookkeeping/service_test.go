package bookkeeping

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	attendancestore "github.com/dalemusser/tutorhub/internal/app/store/attendance"
	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"github.com/dalemusser/tutorhub/internal/app/system/metrics"
	"github.com/dalemusser/tutorhub/internal/domain/ledger"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func counter(t *testing.T, m *metrics.Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			got := map[string]string{}
			for _, lp := range metric.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func key(st models.Student, date string) SlotKey {
	return SlotKey{StudentID: st.ID, GroupID: st.GroupID, Date: date, Time: "10:00"}
}

func TestSetPresenceThenPaid(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	g := h.addGroup("Maths 3e", 20)
	st := h.addStudent(g.ID)
	k := key(st, "2025-03-03")

	res, err := h.svc.SetPresence(ctx, k)
	if err != nil {
		t.Fatalf("SetPresence: %v", err)
	}
	if !res.Record.Present || res.Record.Paid {
		t.Errorf("record = %+v, want present unpaid", res.Record)
	}
	if res.Fee != 20 || res.FeeSource != ledger.FeeLive {
		t.Errorf("fee = %v (%s), want 20 live", res.Fee, res.FeeSource)
	}
	if got := h.student(t, st.ID); got.LessonsAttended != 1 || got.Montant != 20 {
		t.Errorf("balance = %d/%v, want 1/20", got.LessonsAttended, got.Montant)
	}

	res, err = h.svc.SetPaid(ctx, k)
	if err != nil {
		t.Fatalf("SetPaid: %v", err)
	}
	if got := h.student(t, st.ID); got.LessonsAttended != 1 || got.Montant != 0 {
		t.Errorf("balance after paid = %d/%v, want 1/0", got.LessonsAttended, got.Montant)
	}
	if len(h.payments.entries) != 1 {
		t.Fatalf("payments = %d, want 1", len(h.payments.entries))
	}
	e := h.payments.entries[0]
	if e.Amount != 20 || e.SessionDate != "2025-03-03" || e.SessionTime != "10:00" || e.Kind != models.PaymentKindPayment {
		t.Errorf("payment entry = %+v", e)
	}
	if e.OpID == "" || e.OpID != res.OpID {
		t.Errorf("payment op id = %q, result op id = %q", e.OpID, res.OpID)
	}
	if res.Payment == nil || res.Payment.ID != e.ID {
		t.Errorf("result payment = %+v", res.Payment)
	}

	if got := counter(t, h.metrics, "tutorhub_ledger_payments_recorded_total", nil); got != 1 {
		t.Errorf("payments recorded = %v, want 1", got)
	}
	if got := counter(t, h.metrics, "tutorhub_ledger_transitions_total",
		map[string]string{"op": OpPresence, "outcome": metrics.OutcomeApplied}); got != 1 {
		t.Errorf("presence applied = %v, want 1", got)
	}
}

func TestSetPresence_DoubleToggleRestores(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	g := h.addGroup("Physique", 17.5)
	st := h.addStudent(g.ID)
	k := key(st, "2025-03-10")

	for i := 0; i < 2; i++ {
		if _, err := h.svc.SetPresence(ctx, k); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
	}
	if got := h.student(t, st.ID); got.LessonsAttended != 0 || got.Montant != 0 {
		t.Errorf("balance = %d/%v, want 0/0", got.LessonsAttended, got.Montant)
	}
	if r := h.record(t, k); r.Present || r.Paid {
		t.Errorf("record = %+v, want absent", r)
	}
}

func TestPreconditions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	g := h.addGroup("Maths", 20)
	st := h.addStudent(g.ID)

	if _, err := h.svc.SetPaid(ctx, key(st, "2025-03-03")); !errors.Is(err, ledger.ErrNoAttendance) {
		t.Errorf("paid on untouched slot: err = %v", err)
	}
	if len(h.attendance.m) != 0 {
		t.Errorf("untouched slot created a record")
	}

	absent := key(st, "2025-03-10")
	_, _ = h.svc.SetPresence(ctx, absent)
	_, _ = h.svc.SetPresence(ctx, absent)
	if _, err := h.svc.SetPaid(ctx, absent); !errors.Is(err, ledger.ErrSlotNotPresent) {
		t.Errorf("paid on absent slot: err = %v", err)
	}

	locked := key(st, "2025-03-17")
	if _, err := h.svc.SetPresence(ctx, locked); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.SetPaid(ctx, locked); err != nil {
		t.Fatal(err)
	}
	before := h.student(t, st.ID)
	_, err := h.svc.SetPresence(ctx, locked)
	if !errors.Is(err, ledger.ErrPaidSessionLocked) || !IsPrecondition(err) {
		t.Fatalf("absent on paid slot: err = %v", err)
	}
	if after := h.student(t, st.ID); after != before {
		t.Errorf("refused toggle changed the student: %+v -> %+v", before, after)
	}
	if r := h.record(t, locked); !r.Present || !r.Paid {
		t.Errorf("refused toggle changed the record: %+v", r)
	}
	if got := counter(t, h.metrics, "tutorhub_ledger_transitions_total",
		map[string]string{"op": OpPresence, "outcome": metrics.OutcomeBlocked}); got != 1 {
		t.Errorf("presence blocked = %v, want 1", got)
	}
}

func TestSetPaid_Unpay(t *testing.T) {
	tests := []struct {
		name            string
		recordReversals bool
		wantEntries     int
	}{
		{"history untouched", false, 1},
		{"reversal recorded", true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, tt.recordReversals)
			g := h.addGroup("Maths", 20)
			st := h.addStudent(g.ID)
			k := key(st, "2025-03-03")

			for _, step := range []func(context.Context, SlotKey) (Result, error){h.svc.SetPresence, h.svc.SetPaid, h.svc.SetPaid} {
				if _, err := step(ctx, k); err != nil {
					t.Fatal(err)
				}
			}
			if got := h.student(t, st.ID); got.LessonsAttended != 1 || got.Montant != 20 {
				t.Errorf("balance = %d/%v, want 1/20", got.LessonsAttended, got.Montant)
			}
			if len(h.payments.entries) != tt.wantEntries {
				t.Fatalf("entries = %d, want %d", len(h.payments.entries), tt.wantEntries)
			}
			if tt.recordReversals {
				rev := h.payments.entries[1]
				if rev.Kind != models.PaymentKindReversal || rev.Signed() != -20 {
					t.Errorf("reversal = %+v", rev)
				}
			}
		})
	}
}

func TestSetPresence_MissingStudentWritesNothing(t *testing.T) {
	h := newHarness(t, false)
	g := h.addGroup("Maths", 20)
	k := SlotKey{StudentID: primitive.NewObjectID(), GroupID: g.ID, Date: "2025-03-03", Time: "10:00"}

	_, err := h.svc.SetPresence(context.Background(), k)
	if !errors.Is(err, ErrStudentNotFound) || !IsNotFound(err) {
		t.Fatalf("err = %v, want ErrStudentNotFound", err)
	}
	if len(h.attendance.m) != 0 {
		t.Errorf("attendance written for a missing student")
	}
}

func TestSetPresence_InvalidKey(t *testing.T) {
	h := newHarness(t, false)
	g := h.addGroup("Maths", 20)
	st := h.addStudent(g.ID)
	k := key(st, "03/03/2025")

	_, err := h.svc.SetPresence(context.Background(), k)
	if !inputval.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSetPresence_SlotConflict(t *testing.T) {
	h := newHarness(t, false)
	g := h.addGroup("Maths", 20)
	st := h.addStudent(g.ID)
	h.attendance.createErr = attendancestore.ErrDuplicate

	_, err := h.svc.SetPresence(context.Background(), key(st, "2025-03-03"))
	if !errors.Is(err, ErrSlotConflict) || !IsPrecondition(err) {
		t.Fatalf("err = %v, want ErrSlotConflict", err)
	}
	if got := h.student(t, st.ID); got.LessonsAttended != 0 {
		t.Errorf("balance moved on conflict: %+v", got)
	}
}

func TestPartialFailureThenReconcile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	g := h.addGroup("Maths", 20)
	st := h.addStudent(g.ID)
	k := key(st, "2025-03-03")

	boom := errors.New("write concern timeout")
	h.students.balanceErr = boom
	_, err := h.svc.SetPresence(ctx, k)

	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StepError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("StepError does not wrap the store error")
	}
	if se.Step != string(ledger.AdjustBalance) || !se.Partial() || se.Completed[0] != string(ledger.CreateRecord) {
		t.Errorf("step error = %+v", se)
	}
	if se.OpID == "" {
		t.Errorf("missing op id")
	}
	if got := counter(t, h.metrics, "tutorhub_ledger_partial_failures_total",
		map[string]string{"op": OpPresence, "step": string(ledger.AdjustBalance)}); got != 1 {
		t.Errorf("partial failures = %v, want 1", got)
	}

	h.students.balanceErr = nil
	res, err := h.svc.Reconcile(ctx, st.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Drift || res.Applied {
		t.Fatalf("dry run = %+v, want drift and not applied", res)
	}
	if got := h.student(t, st.ID); got.LessonsAttended != 0 {
		t.Errorf("dry run wrote the balance")
	}

	res, err = h.svc.Reconcile(ctx, st.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Applied || res.Expected != (ledger.Balance{LessonsAttended: 1, Montant: 20}) {
		t.Errorf("reconcile = %+v", res)
	}
	if got := h.student(t, st.ID); got.LessonsAttended != 1 || got.Montant != 20 {
		t.Errorf("balance after reconcile = %d/%v, want 1/20", got.LessonsAttended, got.Montant)
	}
}

// Any sequence of accepted toggles keeps the stored balance equal to the one
// recomputed from attendance.
func TestReplayKeepsBalanceConsistent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	g1 := h.addGroup("Maths", 20)
	g2 := h.addGroup("Anglais", 12.5)
	students := []models.Student{h.addStudent(g1.ID), h.addStudent(g1.ID), h.addStudent(g2.ID)}
	dates := []string{"2025-03-03", "2025-03-10", "2025-03-17", "2025-03-24"}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		st := students[rng.Intn(len(students))]
		k := key(st, dates[rng.Intn(len(dates))])
		var err error
		if rng.Intn(2) == 0 {
			_, err = h.svc.SetPresence(ctx, k)
		} else {
			_, err = h.svc.SetPaid(ctx, k)
		}
		if err != nil && !IsPrecondition(err) {
			t.Fatalf("step %d: %v", i, err)
		}
		res, err := h.svc.Reconcile(ctx, st.ID, false)
		if err != nil {
			t.Fatal(err)
		}
		if res.Drift {
			t.Fatalf("step %d: stored %+v, expected %+v", i, res.Stored, res.Expected)
		}
	}

	rep, err := h.svc.CheckAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Checked != len(students) || len(rep.Drifted) != 0 {
		t.Errorf("CheckAll = %+v", rep)
	}
}

func TestDeletedGroupKeepsFee(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	g := h.addGroup("Chimie", 15)
	st := h.addStudent(g.ID)
	k := key(st, "2025-03-03")
	if _, err := h.svc.SetPresence(ctx, k); err != nil {
		t.Fatal(err)
	}

	rec, err := h.svc.ArchiveAndDeleteGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("ArchiveAndDeleteGroup: %v", err)
	}
	if rec.DeletedAt == nil || len(rec.FeeHistory) != 1 {
		t.Fatalf("archive = %+v", rec)
	}
	if _, ok := h.groups.m[g.ID]; ok {
		t.Fatal("group still live")
	}

	q, err := h.svc.FeeForDate(ctx, g.ID, "2025-03-03")
	if err != nil {
		t.Fatal(err)
	}
	if q.Fee != 15 || q.Source != ledger.FeeInterval {
		t.Errorf("quote = %+v, want 15 from interval", q)
	}
	q, _ = h.svc.FeeForDate(ctx, g.ID, "2025-09-01")
	if q.Fee != 15 || q.Source != ledger.FeeArchived {
		t.Errorf("later quote = %+v, want 15 archived", q)
	}

	// Unmarking presence on the deleted group's session refunds 15.
	if _, err := h.svc.SetPresence(ctx, k); err != nil {
		t.Fatal(err)
	}
	if got := h.student(t, st.ID); got.Montant != 0 || got.LessonsAttended != 0 {
		t.Errorf("balance = %+v", got)
	}

	archived, err := h.svc.ArchivedGroups(ctx)
	if err != nil || len(archived) != 1 {
		t.Fatalf("ArchivedGroups = %v, %v", archived, err)
	}
}

func TestFeeChangeThenDelete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	g := h.addGroup("Maths", 20)

	h.now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	edited := g
	edited.FeePerSession = 25
	changed, err := h.svc.UpdateGroup(ctx, edited)
	if err != nil || !changed {
		t.Fatalf("UpdateGroup = %v, %v", changed, err)
	}
	if h.groups.m[g.ID].FeePerSession != 25 {
		t.Fatalf("live fee not updated")
	}
	if q, _ := h.svc.FeeForDate(ctx, g.ID, "2025-03-03"); q.Fee != 25 || q.Source != ledger.FeeLive {
		t.Errorf("live quote = %+v, want current fee", q)
	}

	h.now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	rec, err := h.svc.ArchiveAndDeleteGroup(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.FeeHistory) != 2 {
		t.Fatalf("intervals = %+v, want 2", rec.FeeHistory)
	}

	tests := []struct {
		date string
		want float64
	}{
		{"2025-03-03", 20},
		{"2025-04-07", 25},
	}
	for _, tt := range tests {
		q, err := h.svc.FeeForDate(ctx, g.ID, tt.date)
		if err != nil {
			t.Fatal(err)
		}
		if q.Fee != tt.want || q.Source != ledger.FeeInterval {
			t.Errorf("FeeForDate(%s) = %+v, want %v", tt.date, q, tt.want)
		}
	}
}

func TestUpdateGroup_SameFeeSkipsArchive(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	g := h.addGroup("Maths", 20)
	g.Name = "Maths 4e"

	changed, err := h.svc.UpdateGroup(ctx, g)
	if err != nil || changed {
		t.Fatalf("UpdateGroup = %v, %v", changed, err)
	}
	if _, err := h.archive.Get(ctx, g.ID); err == nil {
		t.Errorf("archive written for a rename")
	}
	if _, err := h.svc.UpdateGroup(ctx, models.Group{ID: primitive.NewObjectID(), Name: "x", FeePerSession: 1}); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("unknown group: err = %v", err)
	}
}

func TestArchive_FailureKeepsGroup(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	g := h.addGroup("Maths", 20)
	h.svc.Archive = failingCache{h.archive}

	_, err := h.svc.ArchiveAndDeleteGroup(ctx, g.ID)
	var se *StepError
	if !errors.As(err, &se) || se.Step != "archive_put" || se.Partial() {
		t.Fatalf("err = %v", err)
	}
	if _, ok := h.groups.m[g.ID]; !ok {
		t.Error("group deleted although archiving failed")
	}
}

func TestRestoreGroup(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	g := h.addGroup("Maths", 20)

	if _, err := h.svc.RestoreGroup(ctx, g.ID); !errors.Is(err, ErrArchiveNotFound) {
		t.Errorf("restore unknown: err = %v", err)
	}
	if _, err := h.svc.ArchiveAndDeleteGroup(ctx, g.ID); err != nil {
		t.Fatal(err)
	}

	restored, err := h.svc.RestoreGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("RestoreGroup: %v", err)
	}
	if restored.ID != g.ID || restored.FeePerSession != 20 || restored.Name != "Maths" {
		t.Errorf("restored = %+v", restored)
	}
	a, err := h.archive.Get(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if a.DeletedAt != nil || len(a.FeeHistory) != 1 {
		t.Errorf("archive after restore = %+v", a)
	}
	if list, _ := h.svc.ArchivedGroups(ctx); len(list) != 0 {
		t.Errorf("restored group still listed as archived")
	}
	if _, err := h.svc.RestoreGroup(ctx, g.ID); !errors.Is(err, ErrGroupLive) {
		t.Errorf("second restore: err = %v", err)
	}

	// Deleting again continues the timeline from the last interval.
	h.now = h.now.Add(48 * time.Hour)
	rec, err := h.svc.ArchiveAndDeleteGroup(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.FeeHistory) != 2 || !rec.FeeHistory[1].ValidFrom.Equal(rec.FeeHistory[0].ValidTo) {
		t.Errorf("timeline = %+v", rec.FeeHistory)
	}
}

func TestFeeForDate_UnknownGroup(t *testing.T) {
	h := newHarness(t, false)
	q, err := h.svc.FeeForDate(context.Background(), primitive.NewObjectID(), "2025-03-03")
	if err != nil {
		t.Fatal(err)
	}
	if q.Fee != 0 || q.Source != ledger.FeeUnknown {
		t.Errorf("quote = %+v", q)
	}
	if got := counter(t, h.metrics, "tutorhub_ledger_unknown_fee_lookups_total", nil); got != 1 {
		t.Errorf("unknown fee lookups = %v, want 1", got)
	}
}
