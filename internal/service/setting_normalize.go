package service

import (
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
)

const (
	siteNameMaxRune         = 100
	siteURLMaxRune          = 255
	siteSupportEmailMaxRune = 255
)

func normalizeSettingValueByKey(key string, value map[string]interface{}) models.JSON {
	switch key {
	case constants.SettingKeySiteConfig:
		return normalizeSiteSetting(value)
	case constants.SettingKeyPayoutConfig:
		return normalizePayoutSettingMap(value)
	default:
		return models.JSON(value)
	}
}

func normalizeSiteSetting(value map[string]interface{}) models.JSON {
	normalized := models.JSON{}
	for k, v := range value {
		normalized[k] = v
	}

	if raw, ok := normalized["site_name"]; ok {
		normalized["site_name"] = normalizeSettingTextWithRuneLimit(raw, siteNameMaxRune)
	}
	if raw, ok := normalized["site_url"]; ok {
		normalized["site_url"] = normalizeSettingTextWithRuneLimit(raw, siteURLMaxRune)
	}
	if raw, ok := normalized["support_email"]; ok {
		normalized["support_email"] = normalizeSettingTextWithRuneLimit(raw, siteSupportEmailMaxRune)
	}
	if raw, ok := normalized["currency"]; ok {
		currency := strings.ToUpper(normalizeSettingText(raw))
		if currency == "" {
			currency = constants.SiteCurrencyDefault
		}
		normalized["currency"] = currency
	}
	if raw, ok := normalized["languages"]; ok {
		normalized["languages"] = normalizeSiteLanguages(raw)
	}

	return normalized
}

func normalizeSiteLanguages(raw interface{}) []string {
	items := normalizeSettingStringList(raw)
	if len(items) == 0 {
		return append([]string(nil), constants.SupportedLocales...)
	}

	supported := make(map[string]struct{}, len(constants.SupportedLocales))
	for _, locale := range constants.SupportedLocales {
		supported[locale] = struct{}{}
	}

	result := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		locale := strings.TrimSpace(item)
		if _, ok := supported[locale]; !ok {
			continue
		}
		if _, ok := seen[locale]; ok {
			continue
		}
		seen[locale] = struct{}{}
		result = append(result, locale)
	}
	if len(result) == 0 {
		return append([]string(nil), constants.SupportedLocales...)
	}
	return result
}

func normalizeSettingText(raw interface{}) string {
	value, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func normalizeSettingTextWithRuneLimit(raw interface{}, maxRuneCount int) string {
	value := normalizeSettingText(raw)
	if maxRuneCount <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= maxRuneCount {
		return value
	}
	return strings.TrimSpace(string(runes[:maxRuneCount]))
}

func normalizeSettingStringList(raw interface{}) []string {
	switch value := raw.(type) {
	case []string:
		return append([]string(nil), value...)
	case []interface{}:
		items := make([]string, 0, len(value))
		for _, item := range value {
			items = append(items, normalizeSettingText(item))
		}
		return items
	default:
		return nil
	}
}

func parseSettingBool(raw interface{}) bool {
	switch value := raw.(type) {
	case bool:
		return value
	case string:
		normalized := strings.ToLower(strings.TrimSpace(value))
		return normalized == "1" || normalized == "true" || normalized == "yes" || normalized == "on"
	case float64:
		return value != 0
	case int:
		return value != 0
	case int64:
		return value != 0
	default:
		return false
	}
}

func cloneStringSlice(items []string) []string {
	if items == nil {
		return nil
	}
	return append([]string(nil), items...)
}
