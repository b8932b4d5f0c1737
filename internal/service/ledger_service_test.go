package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupLedgerServiceTest(t *testing.T) (*LedgerService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.BalanceAccount{},
		&models.BalanceTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewLedgerService(repository.NewLedgerRepository(db)), db
}

func TestLedgerCreditDebitBalance(t *testing.T) {
	svc, _ := setupLedgerServiceTest(t)

	txn, err := svc.Credit(LedgerChangeInput{
		UserID:    1,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.0085)),
		Type:      constants.LedgerTxnTypeRevenue,
		Reference: "revenue:conv-001",
	})
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if !txn.BalanceAfter.Equal(decimal.NewFromFloat(0.0085)) {
		t.Fatalf("unexpected balance after credit: %s", txn.BalanceAfter.String())
	}
	if txn.Direction != constants.LedgerTxnDirectionIn {
		t.Fatalf("unexpected direction: %s", txn.Direction)
	}

	if _, err := svc.Credit(LedgerChangeInput{
		UserID:    1,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(10)),
		Type:      constants.LedgerTxnTypeRevenue,
		Reference: "revenue:conv-002",
	}); err != nil {
		t.Fatalf("second credit failed: %v", err)
	}

	debit, err := svc.Debit(LedgerChangeInput{
		UserID:    1,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(3)),
		Type:      constants.LedgerTxnTypeWithdrawReserve,
		Reference: "withdraw_reserve:W001",
	})
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if !debit.BalanceAfter.Equal(decimal.NewFromFloat(7.0085)) {
		t.Fatalf("unexpected balance after debit: %s", debit.BalanceAfter.String())
	}

	balance, err := svc.GetBalance(1)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(7.0085)) {
		t.Fatalf("unexpected materialized balance: %s", balance.String())
	}
}

func TestLedgerDebitNeverOverdraws(t *testing.T) {
	svc, _ := setupLedgerServiceTest(t)

	if _, err := svc.Credit(LedgerChangeInput{
		UserID:    2,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(5)),
		Type:      constants.LedgerTxnTypeRevenue,
		Reference: "revenue:conv-010",
	}); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	_, err := svc.Debit(LedgerChangeInput{
		UserID:    2,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(5.0001)),
		Type:      constants.LedgerTxnTypeWithdrawReserve,
		Reference: "withdraw_reserve:W010",
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	balance, err := svc.GetBalance(2)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(5)) {
		t.Fatalf("balance changed after rejected debit: %s", balance.String())
	}
}

func TestLedgerReferenceIdempotent(t *testing.T) {
	svc, _ := setupLedgerServiceTest(t)

	first, err := svc.Credit(LedgerChangeInput{
		UserID:    3,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(1.25)),
		Type:      constants.LedgerTxnTypeRevenue,
		Reference: "revenue:conv-020",
	})
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	replay, err := svc.Credit(LedgerChangeInput{
		UserID:    3,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(1.25)),
		Type:      constants.LedgerTxnTypeRevenue,
		Reference: "revenue:conv-020",
	})
	if err != nil {
		t.Fatalf("replay credit failed: %v", err)
	}
	if replay.ID != first.ID {
		t.Fatalf("replay created a new transaction: first=%d replay=%d", first.ID, replay.ID)
	}

	balance, err := svc.GetBalance(3)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(1.25)) {
		t.Fatalf("replay double credited: %s", balance.String())
	}
}

func TestLedgerRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := setupLedgerServiceTest(t)

	_, err := svc.Credit(LedgerChangeInput{
		UserID:    4,
		Amount:    models.NewMoneyFromDecimal(decimal.Zero),
		Type:      constants.LedgerTxnTypeRevenue,
		Reference: "revenue:conv-030",
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for zero credit, got %v", err)
	}

	_, err = svc.Debit(LedgerChangeInput{
		UserID:    4,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(-1)),
		Type:      constants.LedgerTxnTypeWithdrawReserve,
		Reference: "withdraw_reserve:W030",
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for negative debit, got %v", err)
	}
}

func TestLedgerGetBalanceMissingAccountIsZero(t *testing.T) {
	svc, _ := setupLedgerServiceTest(t)

	balance, err := svc.GetBalance(999)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.Zero) {
		t.Fatalf("expected zero balance for missing account, got %s", balance.String())
	}
}

func TestLedgerReconcileDetectsDrift(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)

	if _, err := svc.Credit(LedgerChangeInput{
		UserID:    5,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(2.5)),
		Type:      constants.LedgerTxnTypeRevenue,
		Reference: "revenue:conv-040",
	}); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	result, err := svc.Reconcile(5)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if !result.Consistent {
		t.Fatalf("expected consistent account, got %+v", result)
	}

	// 人为制造物化余额漂移
	if err := db.Model(&models.BalanceAccount{}).
		Where("user_id = ?", uint(5)).
		Update("balance", "9.9999").Error; err != nil {
		t.Fatalf("tamper balance failed: %v", err)
	}

	result, err = svc.Reconcile(5)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.Consistent {
		t.Fatal("expected drift to be reported")
	}
}
