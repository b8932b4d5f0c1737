package service

import (
	"testing"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
)

func TestTierForCountry(t *testing.T) {
	cases := []struct {
		country string
		want    string
	}{
		{"US", constants.CountryTier1},
		{"GB", constants.CountryTier1},
		{"DE", constants.CountryTier1},
		{"ES", constants.CountryTier2},
		{"JP", constants.CountryTier2},
		{"IN", constants.CountryTier3},
		{"ZZ", constants.CountryTier3},
		{"", constants.CountryTier3},
	}
	for _, tc := range cases {
		if got := TierForCountry(tc.country); got != tc.want {
			t.Fatalf("country %q: expected %s, got %s", tc.country, tc.want, got)
		}
	}
}

func TestNormalizeCountry(t *testing.T) {
	if got := NormalizeCountry(" us "); got != "US" {
		t.Fatalf("unexpected normalized country: %q", got)
	}
	if got := NormalizeCountry(""); got != "" {
		t.Fatalf("unexpected normalized empty country: %q", got)
	}
}

func TestNormalizeDevice(t *testing.T) {
	cases := map[string]string{
		" Mobile ":  constants.DeviceMobile,
		"DESKTOP":   constants.DeviceDesktop,
		"tablet":    constants.DeviceTablet,
		"smart-tv":  constants.DeviceUnknown,
		"":          constants.DeviceUnknown,
	}
	for input, want := range cases {
		if got := NormalizeDevice(input); got != want {
			t.Fatalf("device %q: expected %s, got %s", input, want, got)
		}
	}
}
