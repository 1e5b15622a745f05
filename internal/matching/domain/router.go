package domain

// Route is the notification path a matching pair takes.
type Route int

const (
	// RouteNone discards the pair: different owners and the listing does not
	// accept partnerships.
	RouteNone Route = iota
	// RouteInternal notifies the shared owner with a LeadNotification.
	RouteInternal
	// RoutePartnership notifies the property owner on behalf of the lead owner.
	RoutePartnership
)

func (r Route) String() string {
	switch r {
	case RouteInternal:
		return "internal"
	case RoutePartnership:
		return "partnership"
	default:
		return "none"
	}
}

// RouteMatch decides which notification a matching pair produces. Callers
// must only pass pairs for which Matches returned true.
func RouteMatch(lead Lead, property Property) Route {
	if lead.UserID == property.UserID {
		return RouteInternal
	}
	if property.AcceptsPartnership {
		return RoutePartnership
	}
	return RouteNone
}
