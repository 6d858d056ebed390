package services

import (
	"context"
	"testing"
	"time"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/models"
)

func TestOpenSessionIsIdempotent(t *testing.T) {
	svc, db, clock := newTestServices(t)
	ctx := context.Background()
	operator := createUser(t, db, "keimaduracaixa", models.TierStaff)

	first, err := svc.Sessions.Open(ctx, operator)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if first.Status != models.SessionOpen || first.Duration != "00:00:00" || len(first.SaleIDs) != 0 {
		t.Errorf("new session = %+v", first)
	}

	clock.Advance(time.Hour)
	second, err := svc.Sessions.Open(ctx, operator)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if second.ID != first.ID || !second.StartedAt.Equal(first.StartedAt) {
		t.Errorf("second Open returned session %d started %v, want %d", second.ID, second.StartedAt, first.ID)
	}
	if n := countRows(t, db, &models.CashSession{}); n != 1 {
		t.Errorf("sessions = %d, want 1", n)
	}

	current, err := svc.Sessions.Current(ctx, operator)
	if err != nil || current.ID != first.ID {
		t.Errorf("Current = %+v, %v", current, err)
	}

	other := createUser(t, db, "keimaduracaixa2", models.TierStaff)
	if _, err := svc.Sessions.Current(ctx, other); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Current for operator without session: err = %v", err)
	}
	theirs, err := svc.Sessions.Open(ctx, other)
	if err != nil || theirs.ID == first.ID {
		t.Errorf("other operator's session = %+v, %v", theirs, err)
	}
}

func TestCloseSessionComputesDuration(t *testing.T) {
	svc, db, clock := newTestServices(t)
	ctx := context.Background()
	operator := createUser(t, db, "keimaduracaixa", models.TierStaff)

	session, _ := svc.Sessions.Open(ctx, operator)
	clock.Advance(time.Hour + 2*time.Minute + 3*time.Second + 400*time.Millisecond)

	closed, err := svc.Sessions.Close(ctx, operator, session.ID, map[string]any{"notes": "fecho normal"})
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Status != models.SessionClosed {
		t.Errorf("status = %s", closed.Status)
	}
	if closed.Duration != "01:02:03" || closed.DurationMS != 3723000 {
		t.Errorf("duration = %s / %dms, want 01:02:03 / 3723000", closed.Duration, closed.DurationMS)
	}
	if closed.EndedAt == nil || !closed.EndedAt.Equal(clock.Now()) {
		t.Errorf("EndedAt = %v, want %v", closed.EndedAt, clock.Now())
	}
	if closed.Notes != "fecho normal" {
		t.Errorf("notes = %q", closed.Notes)
	}

	if _, err := svc.Sessions.Current(ctx, operator); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Current after close: err = %v", err)
	}
	reopened, err := svc.Sessions.Open(ctx, operator)
	if err != nil || reopened.ID == session.ID {
		t.Errorf("reopen = %+v, %v", reopened, err)
	}
}

func TestCloseSessionCallerFieldsWin(t *testing.T) {
	svc, db, clock := newTestServices(t)
	ctx := context.Background()
	operator := createUser(t, db, "keimaduracaixa", models.TierStaff)

	session, _ := svc.Sessions.Open(ctx, operator)
	clock.Advance(10 * time.Minute)

	closed, err := svc.Sessions.Close(ctx, operator, session.ID, map[string]any{
		"duration":        "00:09:59",
		"duration_ms":     float64(599000),
		"declared_amount": "15250.50",
		"total_sales":     float64(15000),
	})
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Duration != "00:09:59" || closed.DurationMS != 599000 {
		t.Errorf("duration = %s / %d", closed.Duration, closed.DurationMS)
	}
	if closed.DeclaredAmount == nil || !closed.DeclaredAmount.Equal(dec("15250.5")) {
		t.Errorf("declared = %v", closed.DeclaredAmount)
	}
	if !closed.TotalSales.Equal(dec("15000")) {
		t.Errorf("total_sales = %s", closed.TotalSales)
	}
	if closed.Status != models.SessionClosed {
		t.Errorf("status = %s", closed.Status)
	}
}

func TestCloseSessionRejects(t *testing.T) {
	svc, db, _ := newTestServices(t)
	ctx := context.Background()
	operator := createUser(t, db, "keimaduracaixa", models.TierStaff)
	colleague := createUser(t, db, "keimaduracaixa2", models.TierStaff)
	admin := createUser(t, db, "Keimadura", models.TierAdmin)
	session, _ := svc.Sessions.Open(ctx, operator)

	if _, err := svc.Sessions.Close(ctx, operator, session.ID, map[string]any{"status": "open"}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("unknown field: err = %v", err)
	}
	if _, err := svc.Sessions.Close(ctx, operator, session.ID, map[string]any{"duration_ms": "soon"}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("bad field type: err = %v", err)
	}
	if _, err := svc.Sessions.Close(ctx, operator, 999, nil); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing session: err = %v", err)
	}
	if _, err := svc.Sessions.Close(ctx, colleague, session.ID, nil); !apperr.Is(err, apperr.KindPermissionDenied) {
		t.Errorf("colleague close: err = %v", err)
	}

	still, _ := svc.Sessions.Get(ctx, session.ID)
	if still.Status != models.SessionOpen {
		t.Fatalf("rejected closes changed status to %s", still.Status)
	}

	if _, err := svc.Sessions.Close(ctx, admin, session.ID, nil); err != nil {
		t.Fatalf("admin close: %v", err)
	}
	if _, err := svc.Sessions.Close(ctx, operator, session.ID, nil); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("close twice: err = %v", err)
	}
}
