package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/config"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type postbackTestEnv struct {
	postback *PostbackService
	clicks   *ClickService
	ledger   *LedgerService
	referral *ReferralService
	signer   *CorrelationSigner
	db       *gorm.DB
}

func setupPostbackServiceTest(t *testing.T) *postbackTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:postback_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Locker{},
		&models.Click{},
		&models.RateRule{},
		&models.RevenueEvent{},
		&models.BalanceAccount{},
		&models.BalanceTransaction{},
		&models.Referral{},
		&models.ReferralCommission{},
		&models.PostbackAudit{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	signer := NewCorrelationSigner("postback-test-secret", 72)
	ledger := NewLedgerService(repository.NewLedgerRepository(db))
	settings := NewSettingService(repository.NewSettingRepository(db))
	referral := NewReferralService(repository.NewReferralRepository(db), repository.NewUserRepository(db), ledger, settings)
	rate := NewRateService(repository.NewRateRuleRepository(db), repository.NewTaskRepository(db), 0)
	postback := NewPostbackService(
		repository.NewClickRepository(db),
		repository.NewRevenueEventRepository(db),
		repository.NewPostbackAuditRepository(db),
		ledger,
		referral,
		rate,
		signer,
		nil,
	)

	cfg := &config.Config{}
	cfg.Tracking.PostbackBaseURL = "https://vaultlab.example.com/api/v1/postback"
	clicks := NewClickService(
		cfg,
		repository.NewClickRepository(db),
		repository.NewTaskRepository(db),
		repository.NewLockerRepository(db),
		signer,
	)

	return &postbackTestEnv{
		postback: postback,
		clicks:   clicks,
		ledger:   ledger,
		referral: referral,
		signer:   signer,
		db:       db,
	}
}

func (env *postbackTestEnv) createPublisher(t *testing.T, email, code string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		ReferralCode: code,
		Status:       constants.UserStatusActive,
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (env *postbackTestEnv) createClick(t *testing.T, tier1 float64) *models.Click {
	t.Helper()
	publisher := env.createPublisher(t, fmt.Sprintf("pub_%d@example.com", time.Now().UnixNano()), fmt.Sprintf("C%d", time.Now().UnixNano()%1000000))
	return env.createClickFor(t, publisher, tier1)
}

func (env *postbackTestEnv) createClickFor(t *testing.T, publisher *models.User, tier1 float64) *models.Click {
	t.Helper()
	locker := &models.Locker{
		PublisherID: publisher.ID,
		Title:       "Premium Download Hub",
		Status:      constants.LockerStatusActive,
	}
	if err := env.db.Create(locker).Error; err != nil {
		t.Fatalf("create locker failed: %v", err)
	}
	task := &models.Task{
		Title:         "Install Puzzle Quest",
		AdvertiserURL: "https://tracking.example-network.com/aff?offer=42",
		Tier1CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(tier1)),
		Tier2CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(tier1 / 2)),
		Tier3CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(tier1 / 8)),
		Status:        constants.TaskStatusActive,
	}
	if err := env.db.Create(task).Error; err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	result, err := env.clicks.Record(ClickInput{
		LockerID: locker.ID,
		TaskID:   task.ID,
		Device:   constants.DeviceMobile,
		Country:  "US",
	})
	if err != nil {
		t.Fatalf("record click failed: %v", err)
	}
	return result.Click
}

func TestPostbackCreditsResolvedRate(t *testing.T) {
	env := setupPostbackServiceTest(t)
	click := env.createClick(t, 8.50)

	result, err := env.postback.HandleConversion(context.Background(), PostbackInput{
		ClickID:              click.ClickID,
		ExternalConversionID: "conv-001",
		ReportedAmount:       "99.99",
	})
	if err != nil {
		t.Fatalf("handle conversion failed: %v", err)
	}
	if result.Duplicate {
		t.Fatal("first conversion must not be duplicate")
	}

	event := result.Event
	if event.EventID != "conv-001" {
		t.Fatalf("event keyed on wrong id: %s", event.EventID)
	}
	// 入账金额 = CPM/1000，上报金额只留审计
	if !event.Amount.Equal(decimal.NewFromFloat(0.0085)) {
		t.Fatalf("amount must come from resolved CPM: %s", event.Amount.String())
	}
	if event.ReportedAmount != "99.99" {
		t.Fatalf("reported amount must be retained for audit: %s", event.ReportedAmount)
	}

	balance, err := env.ledger.GetBalance(click.PublisherID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(0.0085)) {
		t.Fatalf("publisher not credited with resolver amount: %s", balance.String())
	}

	txn, err := repository.NewLedgerRepository(env.db).GetTransactionByReference("revenue:conv-001")
	if err != nil || txn == nil {
		t.Fatalf("ledger reference missing: %v", err)
	}
}

func TestPostbackIdempotentReplay(t *testing.T) {
	env := setupPostbackServiceTest(t)
	click := env.createClick(t, 8.50)

	input := PostbackInput{ClickID: click.ClickID, ExternalConversionID: "conv-replay"}
	first, err := env.postback.HandleConversion(context.Background(), input)
	if err != nil {
		t.Fatalf("handle conversion failed: %v", err)
	}

	replay, err := env.postback.HandleConversion(context.Background(), input)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !replay.Duplicate {
		t.Fatal("replay must be flagged duplicate")
	}
	if replay.Event.ID != first.Event.ID {
		t.Fatalf("replay returned a different event: %d vs %d", replay.Event.ID, first.Event.ID)
	}

	balance, err := env.ledger.GetBalance(click.PublisherID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(0.0085)) {
		t.Fatalf("replay double credited: %s", balance.String())
	}

	var auditCount int64
	if err := env.db.Model(&models.PostbackAudit{}).
		Where("result = ?", constants.PostbackAuditDuplicate).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audits failed: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("expected one duplicate audit record, got %d", auditCount)
	}
}

func TestPostbackFallsBackToClickID(t *testing.T) {
	env := setupPostbackServiceTest(t)
	click := env.createClick(t, 8.50)

	// 无外部转化ID时以 click_id 作为幂等键
	result, err := env.postback.HandleConversion(context.Background(), PostbackInput{ClickID: click.ClickID})
	if err != nil {
		t.Fatalf("handle conversion failed: %v", err)
	}
	if result.Event.EventID != click.ClickID {
		t.Fatalf("event id must fall back to click_id: %s", result.Event.EventID)
	}

	replay, err := env.postback.HandleConversion(context.Background(), PostbackInput{ClickID: click.ClickID})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !replay.Duplicate {
		t.Fatal("same click without conversion id must be duplicate")
	}
}

func TestPostbackResolvesViaToken(t *testing.T) {
	env := setupPostbackServiceTest(t)
	click := env.createClick(t, 8.50)

	token, err := env.signer.Sign(click.ClickID, click.TaskID, click.LockerID, click.PublisherID)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	result, err := env.postback.HandleConversion(context.Background(), PostbackInput{
		Token:                token,
		ExternalConversionID: "conv-token",
	})
	if err != nil {
		t.Fatalf("handle conversion via token failed: %v", err)
	}
	if result.Event.ClickID != click.ClickID {
		t.Fatalf("token did not resolve to click: %s", result.Event.ClickID)
	}
}

func TestPostbackRejectsUnresolvable(t *testing.T) {
	env := setupPostbackServiceTest(t)

	_, err := env.postback.HandleConversion(context.Background(), PostbackInput{
		ClickID: "ck_nonexistent",
		Token:   "not-a-token",
	})
	if !errors.Is(err, ErrInvalidCorrelation) {
		t.Fatalf("expected invalid correlation, got %v", err)
	}

	var audit models.PostbackAudit
	if err := env.db.Where("result = ?", constants.PostbackAuditInvalidCorrelation).First(&audit).Error; err != nil {
		t.Fatalf("rejected postback must be audited: %v", err)
	}
	if audit.ClickID != "ck_nonexistent" {
		t.Fatalf("audit missing raw click_id: %+v", audit)
	}
}

func TestPostbackZeroRateRecordsWithoutCredit(t *testing.T) {
	env := setupPostbackServiceTest(t)
	click := env.createClick(t, 0)

	result, err := env.postback.HandleConversion(context.Background(), PostbackInput{
		ClickID:              click.ClickID,
		ExternalConversionID: "conv-zero",
	})
	if err != nil {
		t.Fatalf("handle conversion failed: %v", err)
	}
	if !result.Event.Amount.Equal(decimal.Zero) {
		t.Fatalf("expected zero amount: %s", result.Event.Amount.String())
	}

	balance, err := env.ledger.GetBalance(click.PublisherID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.Zero) {
		t.Fatalf("zero-rate conversion must not credit: %s", balance.String())
	}

	var audit models.PostbackAudit
	if err := env.db.Where("result = ?", constants.PostbackAuditZeroRate).First(&audit).Error; err != nil {
		t.Fatalf("zero-rate postback must be audited: %v", err)
	}
}

func TestPostbackCascadesReferralCommission(t *testing.T) {
	env := setupPostbackServiceTest(t)

	referrer := env.createPublisher(t, "referrer@example.com", "REF001")
	publisher := env.createPublisher(t, "referred@example.com", "PUB002")
	if _, err := env.referral.Register("REF001", publisher.ID); err != nil {
		t.Fatalf("register referral failed: %v", err)
	}

	click := env.createClickFor(t, publisher, 10)
	result, err := env.postback.HandleConversion(context.Background(), PostbackInput{
		ClickID:              click.ClickID,
		ExternalConversionID: "conv-cascade",
	})
	if err != nil {
		t.Fatalf("handle conversion failed: %v", err)
	}
	if !result.Event.Amount.Equal(decimal.NewFromFloat(0.01)) {
		t.Fatalf("unexpected event amount: %s", result.Event.Amount.String())
	}

	// 默认佣金比例 0.1：0.01 × 0.1 = 0.001
	referrerBalance, err := env.ledger.GetBalance(referrer.ID)
	if err != nil {
		t.Fatalf("get referrer balance failed: %v", err)
	}
	if !referrerBalance.Equal(decimal.NewFromFloat(0.001)) {
		t.Fatalf("unexpected referrer commission: %s", referrerBalance.String())
	}

	publisherBalance, err := env.ledger.GetBalance(publisher.ID)
	if err != nil {
		t.Fatalf("get publisher balance failed: %v", err)
	}
	if !publisherBalance.Equal(decimal.NewFromFloat(0.01)) {
		t.Fatalf("publisher credit must not include commission: %s", publisherBalance.String())
	}
}

func TestPostbackManualCredit(t *testing.T) {
	env := setupPostbackServiceTest(t)
	publisher := env.createPublisher(t, "manual@example.com", "MAN001")

	event, err := env.postback.ManualCredit(publisher.ID, 0, models.NewMoneyFromDecimal(decimal.NewFromFloat(1.5)), "adjust-001", "make-good")
	if err != nil {
		t.Fatalf("manual credit failed: %v", err)
	}
	if event.Source != constants.RevenueSourceManual {
		t.Fatalf("unexpected source: %s", event.Source)
	}

	balance, err := env.ledger.GetBalance(publisher.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(1.5)) {
		t.Fatalf("manual credit not reflected: %s", balance.String())
	}

	if _, err := env.postback.ManualCredit(publisher.ID, 0, models.NewMoneyFromDecimal(decimal.NewFromFloat(1.5)), "adjust-001", "replay"); !errors.Is(err, ErrDuplicateEvent) {
		t.Fatalf("expected duplicate event, got %v", err)
	}

	if _, err := env.postback.ManualCredit(publisher.ID, 0, models.NewMoneyFromDecimal(decimal.Zero), "adjust-002", ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}
