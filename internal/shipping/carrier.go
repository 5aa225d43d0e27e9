package shipping

import (
	"net/url"
	"strings"
)

const (
	CarrierDelhivery = "delhivery"
	CarrierBlueDart  = "bluedart"
	CarrierIndiaPost = "indiapost"
	CarrierOther     = "other"
)

// NormalizeCarrierKey returns a canonical key for known carriers.
func NormalizeCarrierKey(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	replacer := strings.NewReplacer(" ", "", "-", "", "_", "")
	normalized = replacer.Replace(normalized)

	switch normalized {
	case "delhivery":
		return CarrierDelhivery
	case "bluedart", "blue dart":
		return CarrierBlueDart
	case "indiapost", "india post", "speedpost":
		return CarrierIndiaPost
	case "other":
		return CarrierOther
	default:
		return ""
	}
}

// CanonicalCarrierName maps a carrier key to its display name.
func CanonicalCarrierName(key string) string {
	switch NormalizeCarrierKey(key) {
	case CarrierDelhivery:
		return "Delhivery"
	case CarrierBlueDart:
		return "Blue Dart"
	case CarrierIndiaPost:
		return "India Post"
	default:
		return ""
	}
}

// NormalizeCarrierName keeps custom carriers untouched and normalizes
// known ones.
func NormalizeCarrierName(carrier string) string {
	trimmed := strings.TrimSpace(carrier)
	if trimmed == "" {
		return ""
	}
	if canonical := CanonicalCarrierName(trimmed); canonical != "" {
		return canonical
	}
	return trimmed
}

// BuildTrackingURL returns a carrier-specific tracking URL. Unknown
// carriers return empty.
func BuildTrackingURL(carrier, trackingNumber string) string {
	number := strings.TrimSpace(trackingNumber)
	if number == "" {
		return ""
	}

	escaped := url.QueryEscape(number)
	switch NormalizeCarrierKey(carrier) {
	case CarrierDelhivery:
		return "https://www.delhivery.com/track/package/" + escaped
	case CarrierBlueDart:
		return "https://www.bluedart.com/tracking?trackid=" + escaped
	case CarrierIndiaPost:
		return "https://www.indiapost.gov.in/_layouts/15/dop.portal.tracking/trackconsignment.aspx?lt=" + escaped
	default:
		return ""
	}
}
