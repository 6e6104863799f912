package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	billingrundomain "github.com/GestionAscensores/elevarapp/internal/billingrun/domain"
	"github.com/GestionAscensores/elevarapp/internal/clock"
	"github.com/GestionAscensores/elevarapp/internal/events"
	"github.com/GestionAscensores/elevarapp/internal/tenantcontext"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeGenerator struct {
	calls   int
	periods []string
	result  billingrundomain.GenerateResult
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, tenantID snowflake.ID, period string) (billingrundomain.GenerateResult, error) {
	f.calls++
	f.periods = append(f.periods, period)
	if f.err != nil {
		return billingrundomain.GenerateResult{}, f.err
	}
	return f.result, nil
}

func TestCheckBeforeScheduledDayDoesNothing(t *testing.T) {
	_, svc, gen, tenantID := setupBillingRunTest(t, true, 5, nil)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)

	result, err := svc.CheckAndTrigger(ctx, time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Triggered {
		t.Fatal("expected no trigger before the scheduled day")
	}
	if gen.calls != 0 {
		t.Fatalf("expected no generator call, got %d", gen.calls)
	}
}

func TestCheckOnOrAfterScheduledDayRuns(t *testing.T) {
	db, svc, gen, tenantID := setupBillingRunTest(t, true, 5, nil)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)
	gen.result = billingrundomain.GenerateResult{Count: 3}

	result, err := svc.CheckAndTrigger(ctx, time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Triggered || !result.Success || result.Count != 3 {
		t.Fatalf("expected successful run of 3, got %+v", result)
	}
	if gen.calls != 1 || gen.periods[0] != "2024-06" {
		t.Fatalf("expected one generate for 2024-06, got %v", gen.periods)
	}
	assertMarker(t, db, tenantID, "2024-06")
}

func TestCheckIsIdempotentPerMonth(t *testing.T) {
	_, svc, gen, tenantID := setupBillingRunTest(t, true, 5, nil)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)
	gen.result = billingrundomain.GenerateResult{Count: 2}

	today := time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC)
	if _, err := svc.CheckAndTrigger(ctx, today); err != nil {
		t.Fatalf("first check: %v", err)
	}
	second, err := svc.CheckAndTrigger(ctx, today.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if second.Triggered {
		t.Fatal("expected no second run in the same month")
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generate call, got %d", gen.calls)
	}

	// A new month runs again.
	third, err := svc.CheckAndTrigger(ctx, time.Date(2024, 7, 5, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("third check: %v", err)
	}
	if !third.Triggered {
		t.Fatal("expected run in the next month")
	}
	if gen.calls != 2 {
		t.Fatalf("expected two generate calls, got %d", gen.calls)
	}
}

func TestFailedRunRetriesSameMonth(t *testing.T) {
	db, svc, gen, tenantID := setupBillingRunTest(t, true, 5, nil)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)
	gen.err = errors.New("database unavailable")

	today := time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC)
	result, err := svc.CheckAndTrigger(ctx, today)
	if err != nil {
		t.Fatalf("check with failing generator: %v", err)
	}
	if !result.Triggered || result.Success {
		t.Fatalf("expected triggered failure, got %+v", result)
	}
	assertMarker(t, db, tenantID, "")

	gen.err = nil
	gen.result = billingrundomain.GenerateResult{Count: 1}
	retry, err := svc.CheckAndTrigger(ctx, today)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !retry.Triggered || !retry.Success {
		t.Fatalf("expected successful retry, got %+v", retry)
	}
	if gen.calls != 2 {
		t.Fatalf("expected retry call, got %d calls", gen.calls)
	}
	assertMarker(t, db, tenantID, "2024-06")
}

func TestPartialRunLeavesMarkerUnset(t *testing.T) {
	db, svc, gen, tenantID := setupBillingRunTest(t, true, 1, nil)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)
	gen.result = billingrundomain.GenerateResult{Count: 2, Errors: []string{"client 7: inactive"}}

	result, err := svc.CheckAndTrigger(ctx, time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Triggered || result.Success {
		t.Fatalf("expected triggered incomplete run, got %+v", result)
	}
	if !strings.Contains(result.Message, "incomplete") {
		t.Fatalf("expected incomplete message, got %q", result.Message)
	}
	assertMarker(t, db, tenantID, "")
}

func TestZeroCountRunStillMarksMonth(t *testing.T) {
	db, svc, gen, tenantID := setupBillingRunTest(t, true, 1, nil)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)
	gen.result = billingrundomain.GenerateResult{Count: 0}

	result, err := svc.CheckAndTrigger(ctx, time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Triggered || !result.Success {
		t.Fatalf("expected successful empty run, got %+v", result)
	}
	assertMarker(t, db, tenantID, "2024-06")
}

func TestDisabledScheduleNeverRuns(t *testing.T) {
	_, svc, gen, tenantID := setupBillingRunTest(t, false, 1, nil)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)

	result, err := svc.CheckAndTrigger(ctx, time.Date(2024, 6, 28, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Triggered || gen.calls != 0 {
		t.Fatalf("expected disabled schedule to do nothing, got %+v calls=%d", result, gen.calls)
	}
}

func TestMarkRanWarnsWhenScheduleRowMissing(t *testing.T) {
	db, svcIface, _, tenantID := setupBillingRunTest(t, true, 1, nil)
	svc := svcIface.(*Service)
	core, logs := observer.New(zap.WarnLevel)
	svc.log = zap.New(core)

	// Schedule row dropped between the due check and the marker write.
	if err := db.Where("tenant_id = ?", tenantID).Delete(&billingrundomain.BillingScheduleState{}).Error; err != nil {
		t.Fatalf("delete state: %v", err)
	}

	if err := svc.markRan(context.Background(), tenantID, "2024-06"); err != nil {
		t.Fatalf("markRan: %v", err)
	}
	if logs.FilterMessage("billing schedule state missing, month marker not written").Len() != 1 {
		t.Fatal("expected a warning about the missing schedule row")
	}
}

func TestUpdateScheduleValidatesDay(t *testing.T) {
	_, svc, _, tenantID := setupBillingRunTest(t, false, 1, nil)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)

	bad := 29
	if _, err := svc.UpdateSchedule(ctx, billingrundomain.UpdateScheduleRequest{AutoBillingDay: &bad}); !errors.Is(err, billingrundomain.ErrInvalidDay) {
		t.Fatalf("expected invalid day, got %v", err)
	}

	enabled := true
	day := 15
	state, err := svc.UpdateSchedule(ctx, billingrundomain.UpdateScheduleRequest{
		AutoBillingEnabled: &enabled,
		AutoBillingDay:     &day,
	})
	if err != nil {
		t.Fatalf("update schedule: %v", err)
	}
	if !state.AutoBillingEnabled || state.AutoBillingDay != 15 {
		t.Fatalf("expected enabled day 15, got %+v", state)
	}
}

func TestGetScheduleDefaultsWhenMissing(t *testing.T) {
	db, svcIface, _, _ := setupBillingRunTest(t, false, 1, nil)
	_ = db

	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	otherTenant := node.Generate()
	ctx := tenantcontext.WithTenantID(context.Background(), otherTenant)

	state, err := svcIface.GetSchedule(ctx)
	if err != nil {
		t.Fatalf("get schedule: %v", err)
	}
	if state.AutoBillingEnabled || state.AutoBillingDay != 1 {
		t.Fatalf("expected default schedule, got %+v", state)
	}
}

func assertMarker(t *testing.T, db *gorm.DB, tenantID snowflake.ID, want string) {
	t.Helper()
	var state billingrundomain.BillingScheduleState
	if err := db.Where("tenant_id = ?", tenantID).First(&state).Error; err != nil {
		t.Fatalf("load state: %v", err)
	}
	got := ""
	if state.LastAutoBillingMonth != nil {
		got = *state.LastAutoBillingMonth
	}
	if got != want {
		t.Fatalf("expected marker %q, got %q", want, got)
	}
}

func setupBillingRunTest(t *testing.T, enabled bool, day int, lastMonth *string) (*gorm.DB, billingrundomain.Service, *fakeGenerator, snowflake.ID) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&billingrundomain.BillingScheduleState{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	statements := []string{
		`CREATE TABLE billing_events (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '{}',
			dedupe_key TEXT,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX uq_billing_events_dedupe
			ON billing_events(tenant_id, dedupe_key)
			WHERE dedupe_key IS NOT NULL`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create billing_events: %v", err)
		}
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	tenantID := node.Generate()
	state := billingrundomain.BillingScheduleState{
		TenantID:             tenantID,
		AutoBillingEnabled:   enabled,
		AutoBillingDay:       day,
		LastAutoBillingMonth: lastMonth,
		UpdatedAt:            time.Now().UTC(),
	}
	if err := db.Create(&state).Error; err != nil {
		t.Fatalf("create schedule state: %v", err)
	}

	gen := &fakeGenerator{}
	svc := &Service{
		db:        db,
		log:       zap.NewNop(),
		clock:     clock.Fixed{At: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		generator: gen,
		outbox:    events.NewOutbox(db, node),
	}
	return db, svc, gen, tenantID
}
