package service

import (
	"context"
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

func setupRateServiceTest(t *testing.T) (*RateService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:rate_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Task{}, &models.RateRule{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	svc := NewRateService(repository.NewRateRuleRepository(db), repository.NewTaskRepository(db), 0)
	return svc, db
}

func createRateTestTask(t *testing.T, db *gorm.DB, tier1, tier2, tier3 float64) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:         "Install Puzzle Quest",
		AdvertiserURL: "https://tracking.example-network.com/aff?offer=42",
		Tier1CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(tier1)),
		Tier2CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(tier2)),
		Tier3CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(tier3)),
		Status:        constants.TaskStatusActive,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	return task
}

func TestRateResolveExactRuleBeatsTier(t *testing.T) {
	svc, db := setupRateServiceTest(t)
	task := createRateTestTask(t, db, 8.50, 4.20, 1.10)

	rule := &models.RateRule{
		Device:  constants.DeviceMobile,
		Country: "US",
		TaskID:  task.ID,
		CPM:     models.NewMoneyFromDecimal(decimal.NewFromFloat(10)),
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("create rate rule failed: %v", err)
	}

	cpm, err := svc.Resolve(context.Background(), "mobile", "us", task.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !cpm.Equal(decimal.NewFromFloat(10)) {
		t.Fatalf("exact rule not preferred: %s", cpm.String())
	}

	// 维度不完全命中时退回任务层级价
	cpm, err = svc.Resolve(context.Background(), "desktop", "US", task.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !cpm.Equal(decimal.NewFromFloat(8.50)) {
		t.Fatalf("expected tier1 fallback, got %s", cpm.String())
	}
}

func TestRateResolveTierFallback(t *testing.T) {
	svc, db := setupRateServiceTest(t)
	task := createRateTestTask(t, db, 8.50, 4.20, 1.10)

	cases := []struct {
		country string
		want    float64
	}{
		{"US", 8.50},
		{"GB", 8.50},
		{"ES", 4.20},
		{"JP", 4.20},
		{"IN", 1.10},
		{"ZZ", 1.10},
		{"", 1.10},
	}
	for _, tc := range cases {
		cpm, err := svc.Resolve(context.Background(), constants.DeviceMobile, tc.country, task.ID)
		if err != nil {
			t.Fatalf("resolve %q failed: %v", tc.country, err)
		}
		if !cpm.Equal(decimal.NewFromFloat(tc.want)) {
			t.Fatalf("country %q: expected %v, got %s", tc.country, tc.want, cpm.String())
		}
	}
}

func TestRateResolveMissingTaskIsZero(t *testing.T) {
	svc, _ := setupRateServiceTest(t)

	cpm, err := svc.Resolve(context.Background(), constants.DeviceMobile, "US", 12345)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !cpm.Equal(decimal.Zero) {
		t.Fatalf("expected zero CPM for missing task, got %s", cpm.String())
	}
}

func TestRateUpsertRulesValidation(t *testing.T) {
	svc, db := setupRateServiceTest(t)
	task := createRateTestTask(t, db, 8.50, 4.20, 1.10)

	_, err := svc.UpsertRules(context.Background(), []RateRuleInput{
		{Device: constants.DeviceMobile, Country: "", TaskID: task.ID, CPM: models.NewMoneyFromDecimal(decimal.NewFromFloat(5))},
	})
	if !errors.Is(err, ErrRateRuleInvalid) {
		t.Fatalf("expected invalid rule for empty country, got %v", err)
	}

	_, err = svc.UpsertRules(context.Background(), []RateRuleInput{
		{Device: constants.DeviceMobile, Country: "US", TaskID: 0, CPM: models.NewMoneyFromDecimal(decimal.NewFromFloat(5))},
	})
	if !errors.Is(err, ErrRateRuleInvalid) {
		t.Fatalf("expected invalid rule for zero task, got %v", err)
	}

	_, err = svc.UpsertRules(context.Background(), []RateRuleInput{
		{Device: constants.DeviceMobile, Country: "US", TaskID: task.ID, CPM: models.NewMoneyFromDecimal(decimal.NewFromFloat(-1))},
	})
	if !errors.Is(err, ErrRateRuleInvalid) {
		t.Fatalf("expected invalid rule for negative CPM, got %v", err)
	}
}

func TestRateUpsertRulesLastWinsPerDimension(t *testing.T) {
	svc, db := setupRateServiceTest(t)
	task := createRateTestTask(t, db, 8.50, 4.20, 1.10)

	rules, err := svc.UpsertRules(context.Background(), []RateRuleInput{
		{Device: "Mobile", Country: "us", TaskID: task.ID, CPM: models.NewMoneyFromDecimal(decimal.NewFromFloat(6))},
		{Device: constants.DeviceMobile, Country: "US", TaskID: task.ID, CPM: models.NewMoneyFromDecimal(decimal.NewFromFloat(7.5))},
	})
	if err != nil {
		t.Fatalf("upsert rules failed: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected same-dimension inputs collapsed to one rule, got %d", len(rules))
	}

	cpm, err := svc.Resolve(context.Background(), constants.DeviceMobile, "US", task.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !cpm.Equal(decimal.NewFromFloat(7.5)) {
		t.Fatalf("expected last rule to win, got %s", cpm.String())
	}

	// 再次写入同维度覆盖既有规则
	if _, err := svc.UpsertRules(context.Background(), []RateRuleInput{
		{Device: constants.DeviceMobile, Country: "US", TaskID: task.ID, CPM: models.NewMoneyFromDecimal(decimal.NewFromFloat(9))},
	}); err != nil {
		t.Fatalf("upsert rules failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.RateRule{}).Count(&count).Error; err != nil {
		t.Fatalf("count rules failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected upsert to overwrite, got %d rules", count)
	}

	cpm, err = svc.Resolve(context.Background(), constants.DeviceMobile, "US", task.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !cpm.Equal(decimal.NewFromFloat(9)) {
		t.Fatalf("expected overwritten CPM, got %s", cpm.String())
	}
}
