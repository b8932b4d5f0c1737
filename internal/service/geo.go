package service

import (
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
)

// tier1Countries 高价值流量国家（ISO 3166-1 alpha-2）
var tier1Countries = map[string]struct{}{
	"US": {}, "CA": {}, "GB": {}, "AU": {}, "NZ": {},
	"DE": {}, "FR": {}, "NL": {}, "BE": {}, "AT": {}, "CH": {},
	"SE": {}, "NO": {}, "DK": {}, "FI": {}, "IE": {}, "LU": {},
}

// tier2Countries 中等价值流量国家
var tier2Countries = map[string]struct{}{
	"ES": {}, "IT": {}, "PT": {}, "PL": {}, "CZ": {}, "GR": {}, "HU": {}, "RO": {}, "SK": {},
	"JP": {}, "KR": {}, "SG": {}, "HK": {}, "TW": {}, "MY": {}, "TH": {},
	"AE": {}, "SA": {}, "QA": {}, "KW": {}, "IL": {}, "TR": {},
	"BR": {}, "MX": {}, "AR": {}, "CL": {}, "CO": {},
	"ZA": {}, "RU": {}, "UA": {},
}

// TierForCountry 返回国家所属层级，未收录国家一律归入 tier3
func TierForCountry(country string) string {
	country = NormalizeCountry(country)
	if _, ok := tier1Countries[country]; ok {
		return constants.CountryTier1
	}
	if _, ok := tier2Countries[country]; ok {
		return constants.CountryTier2
	}
	return constants.CountryTier3
}

// NormalizeCountry 归一化国家码（大写两位）
func NormalizeCountry(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}

// NormalizeDevice 归一化设备类型，未知取值归入 unknown
func NormalizeDevice(device string) string {
	switch strings.ToLower(strings.TrimSpace(device)) {
	case constants.DeviceDesktop:
		return constants.DeviceDesktop
	case constants.DeviceMobile:
		return constants.DeviceMobile
	case constants.DeviceTablet:
		return constants.DeviceTablet
	default:
		return constants.DeviceUnknown
	}
}
