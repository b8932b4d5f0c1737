//go:build integration
// +build integration

package service

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupLedgerPostgresTest 初始化 PostgreSQL 账本并发测试环境。
func setupLedgerPostgresTest(t *testing.T) *LedgerService {
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
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
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

	models.DB = db
	return NewLedgerService(repository.NewLedgerRepository(db))
}

// 并发增减同一账户，行锁串行化下不得丢失任何一笔变更。
func TestPostgresLedgerConcurrentCreditDebit(t *testing.T) {
	svc := setupLedgerPostgresTest(t)

	const userID = uint(11)
	if _, err := svc.Credit(LedgerChangeInput{
		UserID:    userID,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(100)),
		Type:      constants.LedgerTxnTypeRevenue,
		Reference: "revenue:conc-seed",
	}); err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}

	const workers = 10
	errCh := make(chan error, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Credit(LedgerChangeInput{
				UserID:    userID,
				Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(1)),
				Type:      constants.LedgerTxnTypeRevenue,
				Reference: fmt.Sprintf("revenue:conc-credit-%d", n),
			})
			errCh <- err
		}(i)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Debit(LedgerChangeInput{
				UserID:    userID,
				Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(1)),
				Type:      constants.LedgerTxnTypeWithdrawReserve,
				Reference: fmt.Sprintf("withdraw_reserve:conc-debit-%d", n),
			})
			errCh <- err
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("concurrent ledger change failed: %v", err)
		}
	}

	balance, err := svc.GetBalance(userID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(100)) {
		t.Fatalf("lost update detected, balance want 100 got %s", balance.String())
	}

	result, err := svc.Reconcile(userID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if !result.Consistent {
		t.Fatalf("materialized balance drifted from ledger sum: %+v", result)
	}
}

// 同一引用并发重放只入账一次。
func TestPostgresLedgerConcurrentSameReference(t *testing.T) {
	svc := setupLedgerPostgresTest(t)

	const userID = uint(12)
	if _, err := svc.Credit(LedgerChangeInput{
		UserID:    userID,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(1)),
		Type:      constants.LedgerTxnTypeRevenue,
		Reference: "revenue:conc-replay-seed",
	}); err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}

	const workers = 8
	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Credit(LedgerChangeInput{
				UserID:    userID,
				Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(2.5)),
				Type:      constants.LedgerTxnTypeRevenue,
				Reference: "revenue:conc-replay",
			})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("concurrent replay failed: %v", err)
		}
	}

	var count int64
	if err := models.DB.Model(&models.BalanceTransaction{}).
		Where("reference = ?", "revenue:conc-replay").Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("replayed reference must credit once, got %d transactions", count)
	}

	balance, err := svc.GetBalance(userID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(3.5)) {
		t.Fatalf("replay double credited, balance want 3.5 got %s", balance.String())
	}
}
