//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.BalanceTransaction{},
		&models.BalanceAccount{},
		&models.RevenueEvent{},
		&models.Click{},
		&models.Task{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Click{},
		&models.RevenueEvent{},
		&models.BalanceAccount{},
		&models.BalanceTransaction{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresRevenueEventIdempotencyKey(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewRevenueEventRepository(db)

	event := &models.RevenueEvent{
		EventID:     "conv-pg-001",
		PublisherID: 1,
		TaskID:      1,
		ClickID:     "clk_pg_001",
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromFloat(0.0085)),
		Source:      constants.RevenueSourcePostback,
		Country:     "US",
		Device:      constants.DeviceMobile,
	}
	if err := repo.Create(event); err != nil {
		t.Fatalf("create revenue event failed: %v", err)
	}

	duplicate := &models.RevenueEvent{
		EventID:     "conv-pg-001",
		PublisherID: 1,
		TaskID:      1,
		ClickID:     "clk_pg_002",
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromFloat(0.0085)),
		Source:      constants.RevenueSourcePostback,
	}
	if err := repo.Create(duplicate); err == nil {
		t.Fatal("expected unique violation for duplicate event_id")
	}

	found, err := repo.GetByEventID("conv-pg-001")
	if err != nil {
		t.Fatalf("get by event id failed: %v", err)
	}
	if found == nil || found.ClickID != "clk_pg_001" {
		t.Fatalf("unexpected event fetched: %+v", found)
	}
}

func TestPostgresLedgerReferenceUniqueAndSum(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewLedgerRepository(db)

	account := &models.BalanceAccount{UserID: 7}
	if err := repo.CreateAccount(account); err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	credit := &models.BalanceTransaction{
		UserID:        7,
		Type:          constants.LedgerTxnTypeRevenue,
		Direction:     constants.LedgerTxnDirectionIn,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromFloat(0.0085)),
		BalanceBefore: models.NewMoneyFromDecimal(decimal.Zero),
		BalanceAfter:  models.NewMoneyFromDecimal(decimal.NewFromFloat(0.0085)),
		Reference:     "revenue:conv-pg-001",
	}
	if err := repo.CreateTransaction(credit); err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}

	replay := &models.BalanceTransaction{
		UserID:        7,
		Type:          constants.LedgerTxnTypeRevenue,
		Direction:     constants.LedgerTxnDirectionIn,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromFloat(0.0085)),
		BalanceBefore: models.NewMoneyFromDecimal(decimal.Zero),
		BalanceAfter:  models.NewMoneyFromDecimal(decimal.NewFromFloat(0.0085)),
		Reference:     "revenue:conv-pg-001",
	}
	if err := repo.CreateTransaction(replay); err == nil {
		t.Fatal("expected unique violation for duplicate reference")
	}

	existing, err := repo.GetTransactionByReference("revenue:conv-pg-001")
	if err != nil {
		t.Fatalf("get transaction by reference failed: %v", err)
	}
	if existing == nil || !existing.Amount.Equal(decimal.NewFromFloat(0.0085)) {
		t.Fatalf("unexpected transaction fetched: %+v", existing)
	}

	sum, err := repo.SumTransactionsByUser(7)
	if err != nil {
		t.Fatalf("sum transactions failed: %v", err)
	}
	if !sum.Equal(decimal.NewFromFloat(0.0085)) {
		t.Fatalf("unexpected transaction sum: %s", sum.String())
	}
}
