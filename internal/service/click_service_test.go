package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
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

func setupClickServiceTest(t *testing.T) (*ClickService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:click_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Locker{},
		&models.Click{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.Tracking.PostbackBaseURL = "https://vaultlab.example.com/api/v1/postback"
	cfg.Tracking.ClickDedupeWindowSeconds = 600

	svc := NewClickService(
		cfg,
		repository.NewClickRepository(db),
		repository.NewTaskRepository(db),
		repository.NewLockerRepository(db),
		NewCorrelationSigner("click-test-secret", 72),
	)
	return svc, db
}

func createClickTestFixtures(t *testing.T, db *gorm.DB) (*models.Locker, *models.Task) {
	t.Helper()
	user := &models.User{
		Email:        "publisher@example.com",
		PasswordHash: "hash",
		ReferralCode: "PUB001",
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	locker := &models.Locker{
		PublisherID: user.ID,
		Title:       "Premium Download Hub",
		Status:      constants.LockerStatusActive,
	}
	if err := db.Create(locker).Error; err != nil {
		t.Fatalf("create locker failed: %v", err)
	}
	task := &models.Task{
		Title:         "Install Puzzle Quest",
		AdvertiserURL: "https://tracking.example-network.com/aff?offer=42",
		Tier1CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(8.50)),
		Tier2CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(4.20)),
		Tier3CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(1.10)),
		Status:        constants.TaskStatusActive,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	return locker, task
}

func TestClickRecordBuildsRedirect(t *testing.T) {
	svc, db := setupClickServiceTest(t)
	locker, task := createClickTestFixtures(t, db)

	result, err := svc.Record(ClickInput{
		LockerID:  locker.ID,
		TaskID:    task.ID,
		VisitorID: "visitor-1",
		Device:    "Mobile",
		Country:   "us",
		ClientIP:  "203.0.113.10",
		UserAgent: "Mozilla/5.0",
	})
	if err != nil {
		t.Fatalf("record click failed: %v", err)
	}
	if result.Reused {
		t.Fatal("first click must not be marked reused")
	}

	click := result.Click
	if !strings.HasPrefix(click.ClickID, "ck_") {
		t.Fatalf("unexpected click id shape: %s", click.ClickID)
	}
	if click.Device != constants.DeviceMobile || click.Country != "US" {
		t.Fatalf("dimensions not normalized: device=%s country=%s", click.Device, click.Country)
	}
	if click.PublisherID != locker.PublisherID {
		t.Fatalf("publisher not taken from locker: %d", click.PublisherID)
	}

	parsed, err := url.Parse(result.RedirectURL)
	if err != nil {
		t.Fatalf("invalid redirect url: %v", err)
	}
	query := parsed.Query()
	if query.Get("click_id") != click.ClickID {
		t.Fatalf("redirect missing click_id: %s", result.RedirectURL)
	}
	if query.Get("task_id") != fmt.Sprintf("%d", task.ID) {
		t.Fatalf("redirect missing task_id: %s", result.RedirectURL)
	}
	if query.Get("publisher_id") != fmt.Sprintf("%d", locker.PublisherID) {
		t.Fatalf("redirect missing publisher_id: %s", result.RedirectURL)
	}
	if query.Get("offer") != "42" {
		t.Fatalf("advertiser url query dropped: %s", result.RedirectURL)
	}

	postback, err := url.Parse(query.Get("postback_url"))
	if err != nil {
		t.Fatalf("invalid postback url: %v", err)
	}
	pbQuery := postback.Query()
	if pbQuery.Get(constants.PostbackParamClickID) != click.ClickID {
		t.Fatalf("postback url missing click_id: %s", postback.String())
	}
	token := pbQuery.Get(constants.PostbackParamToken)
	if token == "" {
		t.Fatalf("postback url missing correlation token: %s", postback.String())
	}
	claims, err := NewCorrelationSigner("click-test-secret", 72).Parse(token)
	if err != nil {
		t.Fatalf("correlation token not verifiable: %v", err)
	}
	if claims.ClickID != click.ClickID || claims.TaskID != task.ID || claims.PublisherID != locker.PublisherID {
		t.Fatalf("unexpected token claims: %+v", claims)
	}
}

func TestClickRecordUniqueIDs(t *testing.T) {
	svc, db := setupClickServiceTest(t)
	locker, task := createClickTestFixtures(t, db)

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		result, err := svc.Record(ClickInput{
			LockerID:  locker.ID,
			TaskID:    task.ID,
			VisitorID: fmt.Sprintf("visitor-%d", i),
			Device:    constants.DeviceMobile,
			Country:   "US",
		})
		if err != nil {
			t.Fatalf("record click failed: %v", err)
		}
		if _, ok := seen[result.Click.ClickID]; ok {
			t.Fatalf("duplicate click id generated: %s", result.Click.ClickID)
		}
		seen[result.Click.ClickID] = struct{}{}
	}
}

func TestClickRecordDedupeWindow(t *testing.T) {
	svc, db := setupClickServiceTest(t)
	locker, task := createClickTestFixtures(t, db)

	first, err := svc.Record(ClickInput{
		LockerID:  locker.ID,
		TaskID:    task.ID,
		VisitorID: "visitor-dedupe",
		Device:    constants.DeviceMobile,
		Country:   "US",
	})
	if err != nil {
		t.Fatalf("record click failed: %v", err)
	}

	repeat, err := svc.Record(ClickInput{
		LockerID:  locker.ID,
		TaskID:    task.ID,
		VisitorID: "visitor-dedupe",
		Device:    constants.DeviceMobile,
		Country:   "US",
	})
	if err != nil {
		t.Fatalf("record repeat click failed: %v", err)
	}
	if !repeat.Reused {
		t.Fatal("repeat click inside window must reuse existing record")
	}
	if repeat.Click.ClickID != first.Click.ClickID {
		t.Fatalf("reused click id mismatch: %s vs %s", repeat.Click.ClickID, first.Click.ClickID)
	}

	// 无访客标识不参与折叠
	anonymous, err := svc.Record(ClickInput{
		LockerID: locker.ID,
		TaskID:   task.ID,
		Device:   constants.DeviceMobile,
		Country:  "US",
	})
	if err != nil {
		t.Fatalf("record anonymous click failed: %v", err)
	}
	if anonymous.Reused {
		t.Fatal("anonymous click must not be deduped")
	}
}

func TestClickRecordInactiveTargets(t *testing.T) {
	svc, db := setupClickServiceTest(t)
	locker, task := createClickTestFixtures(t, db)

	if err := db.Model(&models.Task{}).Where("id = ?", task.ID).
		Update("status", constants.TaskStatusPaused).Error; err != nil {
		t.Fatalf("pause task failed: %v", err)
	}
	_, err := svc.Record(ClickInput{LockerID: locker.ID, TaskID: task.ID, Device: "mobile", Country: "US"})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected task not found for paused task, got %v", err)
	}

	if err := db.Model(&models.Locker{}).Where("id = ?", locker.ID).
		Update("status", constants.LockerStatusDisabled).Error; err != nil {
		t.Fatalf("disable locker failed: %v", err)
	}
	_, err = svc.Record(ClickInput{LockerID: locker.ID, TaskID: task.ID, Device: "mobile", Country: "US"})
	if !errors.Is(err, ErrLockerNotFound) {
		t.Fatalf("expected locker not found for disabled locker, got %v", err)
	}

	_, err = svc.Record(ClickInput{LockerID: 9999, TaskID: task.ID, Device: "mobile", Country: "US"})
	if !errors.Is(err, ErrLockerNotFound) {
		t.Fatalf("expected locker not found for missing locker, got %v", err)
	}
}
