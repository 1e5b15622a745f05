package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MismatchReason names the first rule a pair failed. It is empty for a match.
type MismatchReason string

const (
	ReasonNone                 MismatchReason = ""
	ReasonPropertyUnavailable  MismatchReason = "property_unavailable"
	ReasonPropertyTypeMismatch MismatchReason = "property_type_mismatch"
	ReasonMissingPrice         MismatchReason = "missing_price"
	ReasonPriceOutOfRange      MismatchReason = "price_out_of_range"
	ReasonFinancingNotAccepted MismatchReason = "financing_not_accepted"
	ReasonCityNotPreferred     MismatchReason = "city_not_preferred"
	ReasonStateNotPreferred    MismatchReason = "state_not_preferred"
	ReasonBedroomsOutOfRange   MismatchReason = "bedrooms_out_of_range"
	ReasonBathroomsOutOfRange  MismatchReason = "bathrooms_out_of_range"
	ReasonAreaOutOfRange       MismatchReason = "area_out_of_range"
)

// Result is the outcome of evaluating one (lead, property) pair.
type Result struct {
	Matched bool
	Reason  MismatchReason
	// PriceCents is the property price the lead was compared against.
	PriceCents int64
}

// Matches reports whether property satisfies every criterion of lead.
func Matches(lead Lead, property Property) bool {
	return Evaluate(lead, property).Matched
}

// Evaluate applies the matching rules in order and stops at the first
// failing one. A mismatch is the normal outcome, not an error.
func Evaluate(lead Lead, property Property) Result {
	if property.Status != PropertyStatusAvailable {
		return mismatch(ReasonPropertyUnavailable)
	}
	if property.PropertyType != lead.PropertyType {
		return mismatch(ReasonPropertyTypeMismatch)
	}

	price, ok := property.TargetPriceCents(lead.Interest)
	if !ok || price <= 0 {
		return mismatch(ReasonMissingPrice)
	}

	var minPrice int64
	if lead.MinPriceCents != nil {
		minPrice = *lead.MinPriceCents
	}
	if price < minPrice || price > lead.MaxPriceCents {
		return mismatch(ReasonPriceOutOfRange)
	}

	if lead.Interest == InterestBuy && lead.NeedsFinancing && !property.AcceptsFinancing {
		return mismatch(ReasonFinancingNotAccepted)
	}

	if len(lead.PreferredCities) > 0 && !containsFold(lead.PreferredCities, property.City) {
		return mismatch(ReasonCityNotPreferred)
	}
	if len(lead.PreferredStates) > 0 && !containsFold(lead.PreferredStates, property.State) {
		return mismatch(ReasonStateNotPreferred)
	}

	if !intWithin(lead.Bedrooms, property.Bedrooms) {
		return mismatch(ReasonBedroomsOutOfRange)
	}
	if !intWithin(lead.Bathrooms, property.Bathrooms) {
		return mismatch(ReasonBathroomsOutOfRange)
	}
	if !floatWithin(lead.AreaSqm, property.AreaSqm) {
		return mismatch(ReasonAreaOutOfRange)
	}

	return Result{Matched: true, PriceCents: price}
}

func mismatch(reason MismatchReason) Result {
	return Result{Reason: reason}
}

// FoldPlace normalizes a city or state name for case-insensitive comparison.
// Composed and decomposed accents ("São" typed either way) compare equal.
func FoldPlace(value string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(value)))
}

func containsFold(values []string, target string) bool {
	folded := FoldPlace(target)
	if folded == "" {
		return false
	}
	for _, value := range values {
		if FoldPlace(value) == folded {
			return true
		}
	}
	return false
}

// A property that does not state the attribute is not disqualified.
func intWithin(bounds IntRange, value *int) bool {
	if value == nil {
		return true
	}
	if bounds.Min != nil && *value < *bounds.Min {
		return false
	}
	if bounds.Max != nil && *value > *bounds.Max {
		return false
	}
	return true
}

func floatWithin(bounds FloatRange, value *float64) bool {
	if value == nil {
		return true
	}
	if bounds.Min != nil && *value < *bounds.Min {
		return false
	}
	if bounds.Max != nil && *value > *bounds.Max {
		return false
	}
	return true
}
