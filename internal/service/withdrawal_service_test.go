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

func setupWithdrawalServiceTest(t *testing.T) (*WithdrawalService, *LedgerService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:withdrawal_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.BalanceAccount{},
		&models.BalanceTransaction{},
		&models.Withdrawal{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	ledger := NewLedgerService(repository.NewLedgerRepository(db))
	settings := NewSettingService(repository.NewSettingRepository(db))
	// 固定门槛便于断言：最低 50、每月 3 次
	if _, err := settings.UpdatePayoutSetting(PayoutSetting{
		MinWithdrawAmount:  50,
		MonthlyWithdrawals: 3,
		ReferralRate:       0.05,
		Currency:           "USD",
		WithdrawMethods:    []string{"paypal", "usdt_trc20"},
	}); err != nil {
		t.Fatalf("seed payout setting failed: %v", err)
	}

	svc := NewWithdrawalService(repository.NewWithdrawalRepository(db), ledger, settings, nil)
	return svc, ledger, db
}

func fundWithdrawalTestUser(t *testing.T, ledger *LedgerService, userID uint, amount float64) {
	t.Helper()
	if _, err := ledger.Credit(LedgerChangeInput{
		UserID:    userID,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(amount)),
		Type:      constants.LedgerTxnTypeRevenue,
		Reference: fmt.Sprintf("revenue:fund-%d-%d", userID, time.Now().UnixNano()),
	}); err != nil {
		t.Fatalf("fund user failed: %v", err)
	}
}

func TestWithdrawalPreconditionOrder(t *testing.T) {
	svc, ledger, _ := setupWithdrawalServiceTest(t)
	fundWithdrawalTestUser(t, ledger, 1, 55)

	// 低于门槛优先于余额判断：余额 55 也不够 40 的申请过门槛
	_, err := svc.Request(WithdrawalInput{
		UserID: 1,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromFloat(40)),
		Method: "paypal", Address: "payee@example.com",
	})
	if !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("expected below minimum, got %v", err)
	}

	// 过了门槛但余额不足
	_, err = svc.Request(WithdrawalInput{
		UserID: 1,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromFloat(60)),
		Method: "paypal", Address: "payee@example.com",
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	_, err = svc.Request(WithdrawalInput{
		UserID: 1,
		Amount: models.NewMoneyFromDecimal(decimal.Zero),
		Method: "paypal", Address: "payee@example.com",
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}

	_, err = svc.Request(WithdrawalInput{
		UserID: 0,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromFloat(55)),
		Method: "paypal", Address: "payee@example.com",
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}

	// 拒绝过的申请都不应动余额
	balance, err := ledger.GetBalance(1)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(55)) {
		t.Fatalf("rejected requests must not touch balance: %s", balance.String())
	}
}

func TestWithdrawalRequestDebitsBalance(t *testing.T) {
	svc, ledger, _ := setupWithdrawalServiceTest(t)
	fundWithdrawalTestUser(t, ledger, 2, 55)

	withdrawal, err := svc.Request(WithdrawalInput{
		UserID: 2,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromFloat(55)),
		Method: "paypal", Address: "payee@example.com",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if withdrawal.Status != constants.WithdrawalStatusPending {
		t.Fatalf("unexpected status: %s", withdrawal.Status)
	}
	if withdrawal.WithdrawalNo == "" {
		t.Fatal("withdrawal number missing")
	}

	balance, err := ledger.GetBalance(2)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.Zero) {
		t.Fatalf("expected full reserve on request: %s", balance.String())
	}

	// 预扣流水可按单号追溯
	txn, err := repository.NewLedgerRepository(models.DB).
		GetTransactionByReference(fmt.Sprintf("withdraw_reserve:%s", withdrawal.WithdrawalNo))
	if err != nil || txn == nil {
		t.Fatalf("reserve transaction missing: %v", err)
	}
	if txn.Direction != constants.LedgerTxnDirectionOut {
		t.Fatalf("unexpected reserve direction: %s", txn.Direction)
	}
}

func TestWithdrawalMonthlyCap(t *testing.T) {
	svc, ledger, _ := setupWithdrawalServiceTest(t)
	fundWithdrawalTestUser(t, ledger, 3, 500)

	for i := 0; i < 3; i++ {
		if _, err := svc.Request(WithdrawalInput{
			UserID: 3,
			Amount: models.NewMoneyFromDecimal(decimal.NewFromFloat(50)),
			Method: "paypal", Address: "payee@example.com",
		}); err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
	}

	_, err := svc.Request(WithdrawalInput{
		UserID: 3,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromFloat(50)),
		Method: "paypal", Address: "payee@example.com",
	})
	if !errors.Is(err, ErrWithdrawalMonthlyCapExceeded) {
		t.Fatalf("expected monthly cap exceeded, got %v", err)
	}
}

func TestWithdrawalReviewApprove(t *testing.T) {
	svc, ledger, _ := setupWithdrawalServiceTest(t)
	fundWithdrawalTestUser(t, ledger, 4, 100)

	withdrawal, err := svc.Request(WithdrawalInput{
		UserID: 4,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromFloat(60)),
		Method: "paypal", Address: "payee@example.com",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	reviewed, err := svc.Review(withdrawal.ID, constants.WithdrawalActionApprove, "ok")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if reviewed.Status != constants.WithdrawalStatusApproved {
		t.Fatalf("unexpected status: %s", reviewed.Status)
	}
	if reviewed.ReviewedAt == nil {
		t.Fatal("reviewed_at not set")
	}

	// 审核通过不退款
	balance, err := ledger.GetBalance(4)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(40)) {
		t.Fatalf("approve must keep reserve debited: %s", balance.String())
	}

	if _, err := svc.Review(withdrawal.ID, constants.WithdrawalActionReject, "flip"); !errors.Is(err, ErrWithdrawalAlreadyReviewed) {
		t.Fatalf("expected already reviewed, got %v", err)
	}
}

func TestWithdrawalReviewRejectRefunds(t *testing.T) {
	svc, ledger, _ := setupWithdrawalServiceTest(t)
	fundWithdrawalTestUser(t, ledger, 5, 100)

	withdrawal, err := svc.Request(WithdrawalInput{
		UserID: 5,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromFloat(60)),
		Method: "paypal", Address: "payee@example.com",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	reviewed, err := svc.Review(withdrawal.ID, constants.WithdrawalActionReject, "kyc failed")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if reviewed.Status != constants.WithdrawalStatusRejected {
		t.Fatalf("unexpected status: %s", reviewed.Status)
	}

	balance, err := ledger.GetBalance(5)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(100)) {
		t.Fatalf("reject must refund reserve: %s", balance.String())
	}

	if _, err := svc.Review(withdrawal.ID, constants.WithdrawalActionReject, "again"); !errors.Is(err, ErrWithdrawalAlreadyReviewed) {
		t.Fatalf("expected already reviewed, got %v", err)
	}
	balance, err = ledger.GetBalance(5)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(100)) {
		t.Fatalf("re-review must not double refund: %s", balance.String())
	}
}

func TestWithdrawalReviewMissing(t *testing.T) {
	svc, _, _ := setupWithdrawalServiceTest(t)

	if _, err := svc.Review(9999, constants.WithdrawalActionApprove, ""); !errors.Is(err, ErrWithdrawalNotFound) {
		t.Fatalf("expected withdrawal not found, got %v", err)
	}
}
