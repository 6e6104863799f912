package service

import (
	"context"
	"errors"
	"testing"
	"time"

	clientdomain "github.com/GestionAscensores/elevarapp/internal/client/domain"
	"github.com/GestionAscensores/elevarapp/internal/clock"
	"github.com/GestionAscensores/elevarapp/internal/events"
	pricingdomain "github.com/GestionAscensores/elevarapp/internal/pricing/domain"
	tenantdomain "github.com/GestionAscensores/elevarapp/internal/tenant/domain"
	"github.com/GestionAscensores/elevarapp/internal/tenantcontext"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestApplyMassUpdateRoundsToWholeUnit(t *testing.T) {
	db, svc, tenantID, clientID, node := setupPricingTest(t)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)

	first := addEquipment(t, db, node, tenantID, clientID, decimal.NewFromInt(100), clientdomain.FrequencyMonthly, false)
	second := addEquipment(t, db, node, tenantID, clientID, decimal.NewFromInt(250), clientdomain.FrequencyMonthly, false)

	result, err := svc.ApplyMassUpdate(ctx, pricingdomain.MassUpdateRequest{
		Percentage: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("mass update: %v", err)
	}
	if result.Changes != 2 {
		t.Fatalf("expected 2 changes, got %d", result.Changes)
	}
	if result.UpdatedClients != 1 {
		t.Fatalf("expected 1 client scanned, got %d", result.UpdatedClients)
	}

	assertPrice(t, db, first, "110")
	assertPrice(t, db, second, "275")

	var historyCount int64
	if err := db.Model(&pricingdomain.PriceHistory{}).Where("tenant_id = ?", tenantID).Count(&historyCount).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	if historyCount != 2 {
		t.Fatalf("expected 2 history rows, got %d", historyCount)
	}
}

func TestApplyMassUpdateTwiceRecordsBothRuns(t *testing.T) {
	db, svc, tenantID, clientID, node := setupPricingTest(t)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)

	id := addEquipment(t, db, node, tenantID, clientID, decimal.NewFromInt(100), clientdomain.FrequencyMonthly, false)

	for i := 0; i < 2; i++ {
		if _, err := svc.ApplyMassUpdate(ctx, pricingdomain.MassUpdateRequest{
			Percentage: decimal.NewFromInt(10),
		}); err != nil {
			t.Fatalf("mass update %d: %v", i+1, err)
		}
	}

	// The operation is not idempotent: the second run raises the already
	// raised price and gets its own event.
	assertPrice(t, db, id, "121")

	var eventCount int64
	if err := db.Table("billing_events").
		Where("tenant_id = ? AND event_type = ?", tenantID, "pricing.mass_update.completed").
		Count(&eventCount).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if eventCount != 2 {
		t.Fatalf("expected one event per run, got %d", eventCount)
	}

	var historyCount int64
	if err := db.Model(&pricingdomain.PriceHistory{}).Where("tenant_id = ?", tenantID).Count(&historyCount).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	if historyCount != 2 {
		t.Fatalf("expected 2 history rows, got %d", historyCount)
	}
}

func TestApplyMassUpdateSkipsZeroEffectRows(t *testing.T) {
	db, svc, tenantID, clientID, node := setupPricingTest(t)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)

	// 0.1% of 100 rounds back to 100: no write, no history.
	id := addEquipment(t, db, node, tenantID, clientID, decimal.NewFromInt(100), clientdomain.FrequencyMonthly, false)

	result, err := svc.ApplyMassUpdate(ctx, pricingdomain.MassUpdateRequest{
		Percentage: decimal.RequireFromString("0.1"),
	})
	if err != nil {
		t.Fatalf("mass update: %v", err)
	}
	if result.Changes != 0 {
		t.Fatalf("expected no changes, got %d", result.Changes)
	}
	assertPrice(t, db, id, "100")

	var historyCount int64
	if err := db.Model(&pricingdomain.PriceHistory{}).Where("tenant_id = ?", tenantID).Count(&historyCount).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	if historyCount != 0 {
		t.Fatalf("expected no history rows, got %d", historyCount)
	}
}

func TestApplyMassUpdateHonorsExclusionsAndFrequency(t *testing.T) {
	db, svc, tenantID, clientID, node := setupPricingTest(t)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)

	monthly := addEquipment(t, db, node, tenantID, clientID, decimal.NewFromInt(100), clientdomain.FrequencyMonthly, false)
	quarterly := addEquipment(t, db, node, tenantID, clientID, decimal.NewFromInt(100), clientdomain.FrequencyQuarterly, false)
	excluded := addEquipment(t, db, node, tenantID, clientID, decimal.NewFromInt(100), clientdomain.FrequencyMonthly, true)

	result, err := svc.ApplyMassUpdate(ctx, pricingdomain.MassUpdateRequest{
		Percentage: decimal.NewFromInt(10),
		Frequency:  "monthly",
	})
	if err != nil {
		t.Fatalf("mass update: %v", err)
	}
	if result.Changes != 1 {
		t.Fatalf("expected 1 change, got %d", result.Changes)
	}
	assertPrice(t, db, monthly, "110")
	assertPrice(t, db, quarterly, "100")
	assertPrice(t, db, excluded, "100")
}

func TestApplyMassUpdateValidation(t *testing.T) {
	_, svc, tenantID, _, _ := setupPricingTest(t)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)

	_, err := svc.ApplyMassUpdate(ctx, pricingdomain.MassUpdateRequest{Percentage: decimal.Zero})
	if !errors.Is(err, pricingdomain.ErrInvalidPercentage) {
		t.Fatalf("expected invalid percentage, got %v", err)
	}
	_, err = svc.ApplyMassUpdate(ctx, pricingdomain.MassUpdateRequest{Percentage: decimal.NewFromInt(-5)})
	if !errors.Is(err, pricingdomain.ErrInvalidPercentage) {
		t.Fatalf("expected invalid percentage for negative, got %v", err)
	}
	_, err = svc.ApplyMassUpdate(ctx, pricingdomain.MassUpdateRequest{
		Percentage: decimal.NewFromInt(10),
		Frequency:  "FORTNIGHTLY",
	})
	if !errors.Is(err, pricingdomain.ErrInvalidFrequency) {
		t.Fatalf("expected invalid frequency, got %v", err)
	}
}

func TestMonthKeyUsesLocalCalendar(t *testing.T) {
	// 01:30 UTC on the first is still the last day of the prior month at UTC-3.
	boundary := time.Date(2024, 6, 1, 1, 30, 0, 0, time.UTC)
	if got := pricingdomain.MonthKey(boundary); got != "2024-05" {
		t.Fatalf("expected 2024-05, got %s", got)
	}
	later := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if got := pricingdomain.MonthKey(later); got != "2024-06" {
		t.Fatalf("expected 2024-06, got %s", got)
	}
}

func TestListHistoryFilters(t *testing.T) {
	db, svc, tenantID, clientID, node := setupPricingTest(t)
	ctx := tenantcontext.WithTenantID(context.Background(), tenantID)

	addEquipment(t, db, node, tenantID, clientID, decimal.NewFromInt(100), clientdomain.FrequencyMonthly, false)
	if _, err := svc.ApplyMassUpdate(ctx, pricingdomain.MassUpdateRequest{Percentage: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("mass update: %v", err)
	}

	rows, err := svc.ListHistory(ctx, pricingdomain.ListHistoryRequest{ClientID: clientID.String()})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if !rows[0].IsMassUpdate {
		t.Fatal("expected mass update flag")
	}

	rows, err = svc.ListHistory(ctx, pricingdomain.ListHistoryRequest{Month: "1999-01"})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows for unrelated month, got %d", len(rows))
	}
}

func assertPrice(t *testing.T, db *gorm.DB, equipmentID snowflake.ID, want string) {
	t.Helper()
	var row clientdomain.ClientEquipment
	if err := db.Where("id = ?", equipmentID).First(&row).Error; err != nil {
		t.Fatalf("load equipment: %v", err)
	}
	if !row.Price.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("expected price %s, got %s", want, row.Price)
	}
}

func addEquipment(t *testing.T, db *gorm.DB, node *snowflake.Node, tenantID, clientID snowflake.ID, price decimal.Decimal, freq clientdomain.PriceUpdateFrequency, excluded bool) snowflake.ID {
	t.Helper()
	row := clientdomain.ClientEquipment{
		ID:                    node.Generate(),
		TenantID:              tenantID,
		ClientID:              clientID,
		Type:                  "Ascensor",
		Quantity:              1,
		Price:                 price,
		ExcludeFromMassUpdate: excluded,
		PriceUpdateFrequency:  freq,
		CreatedAt:             time.Now().UTC(),
		UpdatedAt:             time.Now().UTC(),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create equipment: %v", err)
	}
	return row.ID
}

func setupPricingTest(t *testing.T) (*gorm.DB, pricingdomain.Service, snowflake.ID, snowflake.ID, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&tenantdomain.Tenant{},
		&clientdomain.Client{},
		&clientdomain.ClientEquipment{},
		&pricingdomain.PriceHistory{},
	); err != nil {
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

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tenant := tenantdomain.Tenant{
		ID:          node.Generate(),
		Name:        "Test Ascensores",
		CUIT:        "30-71234567-8",
		PointOfSale: 1,
		RegimeType:  tenantdomain.RegimeTypeServices,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	client := clientdomain.Client{
		ID:        node.Generate(),
		TenantID:  tenant.ID,
		Name:      "Consorcio Test",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}

	svc := &Service{
		db:     db,
		log:    zap.NewNop(),
		genID:  node,
		clock:  clock.Fixed{At: now},
		outbox: events.NewOutbox(db, node),
	}
	return db, svc, tenant.ID, client.ID, node
}
