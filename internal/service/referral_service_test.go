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

func setupReferralServiceTest(t *testing.T) (*ReferralService, *LedgerService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:referral_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.RevenueEvent{},
		&models.BalanceAccount{},
		&models.BalanceTransaction{},
		&models.Referral{},
		&models.ReferralCommission{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	ledger := NewLedgerService(repository.NewLedgerRepository(db))
	settings := NewSettingService(repository.NewSettingRepository(db))
	svc := NewReferralService(repository.NewReferralRepository(db), repository.NewUserRepository(db), ledger, settings)
	return svc, ledger, db
}

func createReferralTestUser(t *testing.T, db *gorm.DB, email, code string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		ReferralCode: code,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestReferralRegister(t *testing.T) {
	svc, _, db := setupReferralServiceTest(t)
	referrer := createReferralTestUser(t, db, "referrer@example.com", "REF001")
	referred := createReferralTestUser(t, db, "referred@example.com", "NEW001")

	referral, err := svc.Register("REF001", referred.ID)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if referral.ReferrerID != referrer.ID || referral.ReferredID != referred.ID {
		t.Fatalf("unexpected referral binding: %+v", referral)
	}
	if referral.Status != constants.ReferralStatusActive {
		t.Fatalf("unexpected status: %s", referral.Status)
	}
	// 绑定时固化当时的佣金比例
	if !referral.CommissionRate.Equal(decimal.NewFromFloat(0.1)) {
		t.Fatalf("commission rate not snapshotted: %s", referral.CommissionRate.String())
	}

	if _, err := svc.Register("REF001", referred.ID); !errors.Is(err, ErrAlreadyReferred) {
		t.Fatalf("expected already referred, got %v", err)
	}
	if _, err := svc.Register("REF001", referrer.ID); !errors.Is(err, ErrReferralSelf) {
		t.Fatalf("expected self referral rejection, got %v", err)
	}
	if _, err := svc.Register("NOPE99", referred.ID); !errors.Is(err, ErrReferralCodeInvalid) {
		t.Fatalf("expected invalid code, got %v", err)
	}
	if _, err := svc.Register("", referred.ID); !errors.Is(err, ErrReferralCodeInvalid) {
		t.Fatalf("expected invalid empty code, got %v", err)
	}
	if _, err := svc.Register("REF001", 9999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestReferralCascadeCreditsCommission(t *testing.T) {
	svc, ledger, db := setupReferralServiceTest(t)
	referrer := createReferralTestUser(t, db, "referrer@example.com", "REF001")
	publisher := createReferralTestUser(t, db, "publisher@example.com", "PUB001")

	if _, err := svc.Register("REF001", publisher.ID); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	event := &models.RevenueEvent{
		EventID:     "conv-100",
		PublisherID: publisher.ID,
		TaskID:      1,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromFloat(2)),
		Source:      constants.RevenueSourcePostback,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("create event failed: %v", err)
	}

	var commission *models.ReferralCommission
	err := db.Transaction(func(tx *gorm.DB) error {
		created, err := svc.CascadeInTx(tx, event)
		commission = created
		return err
	})
	if err != nil {
		t.Fatalf("cascade failed: %v", err)
	}
	if commission == nil {
		t.Fatal("expected commission to be created")
	}
	// 2 × 0.1 = 0.2
	if !commission.Amount.Equal(decimal.NewFromFloat(0.2)) {
		t.Fatalf("unexpected commission amount: %s", commission.Amount.String())
	}

	balance, err := ledger.GetBalance(referrer.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(0.2)) {
		t.Fatalf("referrer not credited: %s", balance.String())
	}

	refreshed, err := svc.GetByReferredID(publisher.ID)
	if err != nil {
		t.Fatalf("get referral failed: %v", err)
	}
	if !refreshed.TotalEarned.Equal(decimal.NewFromFloat(0.2)) {
		t.Fatalf("total earned not accumulated: %s", refreshed.TotalEarned.String())
	}

	// 同一事件重放幂等返回既有佣金
	var replay *models.ReferralCommission
	err = db.Transaction(func(tx *gorm.DB) error {
		created, err := svc.CascadeInTx(tx, event)
		replay = created
		return err
	})
	if err != nil {
		t.Fatalf("cascade replay failed: %v", err)
	}
	if replay == nil || replay.ID != commission.ID {
		t.Fatalf("replay must return existing commission: %+v", replay)
	}

	balance, err = ledger.GetBalance(referrer.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(0.2)) {
		t.Fatalf("replay double credited: %s", balance.String())
	}
}

func TestReferralCascadeSkips(t *testing.T) {
	svc, ledger, db := setupReferralServiceTest(t)
	referrer := createReferralTestUser(t, db, "referrer@example.com", "REF001")
	publisher := createReferralTestUser(t, db, "publisher@example.com", "PUB001")
	orphan := createReferralTestUser(t, db, "orphan@example.com", "ORP001")

	if _, err := svc.Register("REF001", publisher.ID); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// 无推荐关系的发布者不产生佣金
	orphanEvent := &models.RevenueEvent{
		EventID:     "conv-orphan",
		PublisherID: orphan.ID,
		TaskID:      1,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromFloat(2)),
		Source:      constants.RevenueSourcePostback,
	}
	if err := db.Create(orphanEvent).Error; err != nil {
		t.Fatalf("create event failed: %v", err)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		commission, err := svc.CascadeInTx(tx, orphanEvent)
		if commission != nil {
			t.Fatalf("unexpected commission for unreferred publisher: %+v", commission)
		}
		return err
	})
	if err != nil {
		t.Fatalf("cascade failed: %v", err)
	}

	// 零额事件不计提
	zeroEvent := &models.RevenueEvent{
		EventID:     "conv-zero",
		PublisherID: publisher.ID,
		TaskID:      1,
		Amount:      models.NewMoneyFromDecimal(decimal.Zero),
		Source:      constants.RevenueSourcePostback,
	}
	if err := db.Create(zeroEvent).Error; err != nil {
		t.Fatalf("create event failed: %v", err)
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		commission, err := svc.CascadeInTx(tx, zeroEvent)
		if commission != nil {
			t.Fatalf("unexpected commission for zero amount: %+v", commission)
		}
		return err
	})
	if err != nil {
		t.Fatalf("cascade failed: %v", err)
	}

	balance, err := ledger.GetBalance(referrer.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.Zero) {
		t.Fatalf("unexpected referrer balance: %s", balance.String())
	}
}

func TestReferralCascadeInactiveRelation(t *testing.T) {
	svc, ledger, db := setupReferralServiceTest(t)
	referrer := createReferralTestUser(t, db, "referrer@example.com", "REF001")
	publisher := createReferralTestUser(t, db, "publisher@example.com", "PUB001")

	if _, err := svc.Register("REF001", publisher.ID); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := db.Model(&models.Referral{}).Where("referred_id = ?", publisher.ID).
		Update("status", constants.ReferralStatusInactive).Error; err != nil {
		t.Fatalf("deactivate referral failed: %v", err)
	}

	event := &models.RevenueEvent{
		EventID:     "conv-inactive",
		PublisherID: publisher.ID,
		TaskID:      1,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromFloat(2)),
		Source:      constants.RevenueSourcePostback,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("create event failed: %v", err)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		commission, err := svc.CascadeInTx(tx, event)
		if commission != nil {
			t.Fatalf("inactive relation must not earn commission: %+v", commission)
		}
		return err
	})
	if err != nil {
		t.Fatalf("cascade failed: %v", err)
	}

	balance, err := ledger.GetBalance(referrer.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.Zero) {
		t.Fatalf("unexpected referrer balance: %s", balance.String())
	}
}
