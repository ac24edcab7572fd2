package locale

import (
	"strings"
)

// DefaultRegion is used for numbers without a country code when the
// service zone is not listed below.
const DefaultRegion = "BR"

type Country struct {
	Code  string // ISO 3166-1 alpha-2 code (e.g. "BR", "PT")
	Name  string
	Zones []string
}

var Countries = map[string]Country{
	"BR": {
		Code: "BR",
		Name: "Brazil",
		Zones: []string{
			"America/Sao_Paulo", "America/Bahia", "America/Fortaleza", "America/Recife",
			"America/Belem", "America/Manaus", "America/Cuiaba", "America/Campo_Grande",
			"America/Porto_Velho", "America/Boa_Vista", "America/Rio_Branco",
			"America/Noronha", "Brazil/East", "Brazil/West",
		},
	},
	"PT": {
		Code:  "PT",
		Name:  "Portugal",
		Zones: []string{"Europe/Lisbon", "Atlantic/Madeira", "Atlantic/Azores", "Portugal"},
	},
	"AR": {
		Code:  "AR",
		Name:  "Argentina",
		Zones: []string{"America/Argentina/Buenos_Aires", "America/Buenos_Aires"},
	},
	"US": {
		Code:  "US",
		Name:  "United States",
		Zones: []string{"America/New_York", "America/Chicago", "America/Denver", "America/Los_Angeles", "US/Eastern", "US/Pacific"},
	},
}

// DetectRegion maps an IANA zone to the region used when parsing national
// phone numbers.
func DetectRegion(tz string) string {
	for region, country := range Countries {
		for _, z := range country.Zones {
			if strings.EqualFold(tz, z) {
				return region
			}
		}
	}
	return DefaultRegion
}
