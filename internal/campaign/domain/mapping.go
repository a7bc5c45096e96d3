package domain

import (
	"regexp"
	"strings"

	"github.com/enfinitus/onboarding/internal/config"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
)

var postalSuffix = regexp.MustCompile(`-[0-9]+$`)

// ClassifyTariff maps a tariff id such as "standard-10115" to its tariff type.
// The postal suffix is dropped and the product token must be a known alias.
func ClassifyTariff(mapping config.TariffMapping, tariffID string) (tariffdomain.TariffType, error) {
	token := strings.ToLower(strings.TrimSpace(tariffID))
	token = postalSuffix.ReplaceAllString(token, "")
	if token == "" {
		return "", ErrUnresolvableTariff
	}

	raw, ok := mapping.Aliases[token]
	if !ok {
		return "", ErrUnresolvableTariff
	}
	tariffType, ok := tariffdomain.ParseTariffType(raw)
	if !ok {
		return "", ErrUnresolvableTariff
	}
	return tariffType, nil
}

// CampaignKeyFor returns the canonical campaign key of a tariff type.
func CampaignKeyFor(mapping config.TariffMapping, tariffType tariffdomain.TariffType) (string, bool) {
	key, ok := mapping.CampaignKeys[string(tariffType)]
	return key, ok && key != ""
}
