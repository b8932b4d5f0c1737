package service

import (
	"errors"
	"testing"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
)

type mockSettingRepo struct {
	store map[string]models.JSON
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{store: map[string]models.JSON{}}
}

func (m *mockSettingRepo) GetByKey(key string) (*models.Setting, error) {
	value, ok := m.store[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func (m *mockSettingRepo) Upsert(key string, value models.JSON) (*models.Setting, error) {
	m.store[key] = value
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func TestUpdateSiteSettingNormalized(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeySiteConfig, map[string]interface{}{
		"site_name":     "  Vault Lab  ",
		"site_url":      "  https://vaultlab.example.com  ",
		"support_email": "  support@vaultlab.example.com ",
		"currency":      " usd ",
		"languages":     []interface{}{" zh-CN ", "en-US", "", "en-US", "fr-FR"},
		"extra":         "keep",
	})
	if err != nil {
		t.Fatalf("update site config failed: %v", err)
	}

	if result["site_name"] != "Vault Lab" {
		t.Fatalf("unexpected site_name: %v", result["site_name"])
	}
	if result["site_url"] != "https://vaultlab.example.com" {
		t.Fatalf("unexpected site_url: %v", result["site_url"])
	}
	if result["currency"] != "USD" {
		t.Fatalf("unexpected currency: %v", result["currency"])
	}
	if result["extra"] != "keep" {
		t.Fatalf("unexpected extra field: %v", result["extra"])
	}

	languages, ok := result["languages"].([]string)
	if !ok {
		t.Fatalf("invalid languages payload type: %T", result["languages"])
	}
	if len(languages) != 2 || languages[0] != "zh-CN" || languages[1] != "en-US" {
		t.Fatalf("unexpected languages: %+v", languages)
	}
}

func TestUpdateSiteSettingEmptyCurrencyFallsBack(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeySiteConfig, map[string]interface{}{
		"currency":  "   ",
		"languages": []interface{}{"de-DE"},
	})
	if err != nil {
		t.Fatalf("update site config failed: %v", err)
	}

	if result["currency"] != constants.SiteCurrencyDefault {
		t.Fatalf("unexpected currency fallback: %v", result["currency"])
	}

	languages, ok := result["languages"].([]string)
	if !ok {
		t.Fatalf("invalid languages payload type: %T", result["languages"])
	}
	if len(languages) != len(constants.SupportedLocales) {
		t.Fatalf("unexpected languages fallback: %+v", languages)
	}
}

func TestNormalizePayoutSetting(t *testing.T) {
	normalized := NormalizePayoutSetting(PayoutSetting{
		MinWithdrawAmount:  -10,
		MonthlyWithdrawals: 0,
		ReferralRate:       1.5,
		Currency:           " usd ",
		WithdrawMethods:    []string{" PayPal ", "paypal", "", "usdt_trc20"},
	})

	if normalized.MinWithdrawAmount != 0 {
		t.Fatalf("unexpected min withdraw amount: %v", normalized.MinWithdrawAmount)
	}
	if normalized.MonthlyWithdrawals != 1 {
		t.Fatalf("unexpected monthly withdrawals: %d", normalized.MonthlyWithdrawals)
	}
	if normalized.ReferralRate != 1 {
		t.Fatalf("unexpected referral rate: %v", normalized.ReferralRate)
	}
	if normalized.Currency != "USD" {
		t.Fatalf("unexpected currency: %s", normalized.Currency)
	}
	if len(normalized.WithdrawMethods) != 2 || normalized.WithdrawMethods[0] != "PayPal" || normalized.WithdrawMethods[1] != "usdt_trc20" {
		t.Fatalf("unexpected withdraw methods: %+v", normalized.WithdrawMethods)
	}
}

func TestValidatePayoutSettingRequiresMethod(t *testing.T) {
	err := ValidatePayoutSetting(PayoutSetting{
		MinWithdrawAmount:  50,
		MonthlyWithdrawals: 3,
		ReferralRate:       0.05,
		Currency:           "USD",
		WithdrawMethods:    nil,
	})
	if !errors.Is(err, ErrPayoutConfigInvalid) {
		t.Fatalf("expected payout config invalid error, got %v", err)
	}
}

func TestPayoutSettingRoundTripThroughSettings(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	saved, err := svc.UpdatePayoutSetting(PayoutSetting{
		MinWithdrawAmount:  55,
		MonthlyWithdrawals: 3,
		ReferralRate:       0.05,
		Currency:           "usd",
		WithdrawMethods:    []string{"paypal"},
	})
	if err != nil {
		t.Fatalf("update payout setting failed: %v", err)
	}
	if saved.Currency != "USD" {
		t.Fatalf("unexpected saved currency: %s", saved.Currency)
	}

	loaded, err := svc.GetPayoutSetting()
	if err != nil {
		t.Fatalf("get payout setting failed: %v", err)
	}
	if loaded.MinWithdrawAmount != 55 || loaded.MonthlyWithdrawals != 3 || loaded.ReferralRate != 0.05 {
		t.Fatalf("unexpected loaded payout setting: %+v", loaded)
	}
	if len(loaded.WithdrawMethods) != 1 || loaded.WithdrawMethods[0] != "paypal" {
		t.Fatalf("unexpected loaded withdraw methods: %+v", loaded.WithdrawMethods)
	}
}
