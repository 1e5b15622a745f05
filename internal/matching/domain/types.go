// Package domain holds the matching rules between leads and properties and
// the notification records they produce. Nothing here performs I/O.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Interest is what a lead wants to do with a property.
type Interest string

const (
	InterestRent Interest = "RENT"
	InterestBuy  Interest = "BUY"
)

// LeadStatus is the lifecycle status of a lead in the CRM.
type LeadStatus string

const (
	LeadStatusActive    LeadStatus = "ACTIVE"
	LeadStatusConverted LeadStatus = "CONVERTED"
	LeadStatusInactive  LeadStatus = "INACTIVE"
)

// PropertyStatus is the availability of a listing.
type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "AVAILABLE"
	PropertyStatusRented    PropertyStatus = "RENTED"
	PropertyStatusSold      PropertyStatus = "SOLD"
)

// PropertyType is the listing category shared by leads and properties.
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "APARTMENT"
	PropertyTypeHouse      PropertyType = "HOUSE"
	PropertyTypeCommercial PropertyType = "COMMERCIAL"
	PropertyTypeLand       PropertyType = "LAND"
)

// IntRange is an optional inclusive bound; a nil side is open.
type IntRange struct {
	Min *int
	Max *int
}

// FloatRange is an optional inclusive bound; a nil side is open.
type FloatRange struct {
	Min *float64
	Max *float64
}

// Lead is a demand-side profile. Prices are integer cents.
type Lead struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	OrganizationID    *uuid.UUID
	Name              string
	Phone             string
	Email             string
	Interest          Interest
	PropertyType      PropertyType
	MinPriceCents     *int64
	MaxPriceCents     int64
	Bedrooms          IntRange
	Bathrooms         IntRange
	AreaSqm           FloatRange
	PreferredCities   []string
	PreferredStates   []string
	NeedsFinancing    bool
	Status            LeadStatus
	MatchedPropertyID *uuid.UUID
	UpdatedAt         time.Time
}

// Property is a supply-side listing. Prices are integer cents.
type Property struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	OrganizationID     *uuid.UUID
	Title              string
	PropertyType       PropertyType
	RentPriceCents     *int64
	SalePriceCents     *int64
	City               string
	State              string
	Bedrooms           *int
	Bathrooms          *int
	AreaSqm            *float64
	Status             PropertyStatus
	AcceptsPartnership bool
	AcceptsFinancing   bool
	UpdatedAt          time.Time
}

// TargetPriceCents returns the price of p that is relevant for interest:
// rent for RENT, sale otherwise.
func (p Property) TargetPriceCents(interest Interest) (int64, bool) {
	price := p.SalePriceCents
	if interest == InterestRent {
		price = p.RentPriceCents
	}
	if price == nil {
		return 0, false
	}
	return *price, true
}

// NotificationState is the observable lifecycle state of a notification.
type NotificationState string

const (
	StatePending  NotificationState = "PENDING"
	StateResolved NotificationState = "RESOLVED"
)

// LeadNotification records an internal match: lead and property share an owner.
type LeadNotification struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	PropertyID uuid.UUID
	// UserID is the addressee: the lead's current owner on reads.
	UserID     uuid.UUID
	Sent       bool
	SentAt     *time.Time
	CreatedAt  time.Time

	// Read-side summary, joined at list time.
	LeadName           string
	PropertyTitle      string
	PropertyPriceCents *int64
}

// State maps the sent flag onto the lifecycle state.
func (n LeadNotification) State() NotificationState {
	if n.Sent {
		return StateResolved
	}
	return StatePending
}

// ContactSnapshot is the contact data copied into a partnership notification
// when it is created. It is never re-derived on read.
type ContactSnapshot struct {
	FromUserName       string
	FromUserPhone      *string
	FromUserEmail      string
	LeadName           string
	LeadPhone          *string
	PropertyTitle      string
	PropertyPriceCents int64
}

// PartnershipNotification records a cross-owner match addressed to the
// property owner.
type PartnershipNotification struct {
	ID         uuid.UUID
	FromUserID uuid.UUID
	ToUserID   uuid.UUID
	LeadID     uuid.UUID
	PropertyID uuid.UUID
	Snapshot   ContactSnapshot
	MatchType  Interest
	Viewed     bool
	ViewedAt   *time.Time
	CreatedAt  time.Time
}

// State maps the viewed flag onto the lifecycle state.
func (n PartnershipNotification) State() NotificationState {
	if n.Viewed {
		return StateResolved
	}
	return StatePending
}

// PartnershipKey is the dedup key of a partnership notification.
type PartnershipKey struct {
	FromUserID uuid.UUID
	ToUserID   uuid.UUID
	LeadID     uuid.UUID
	PropertyID uuid.UUID
}

// Key returns the dedup key of n.
func (n PartnershipNotification) Key() PartnershipKey {
	return PartnershipKey{
		FromUserID: n.FromUserID,
		ToUserID:   n.ToUserID,
		LeadID:     n.LeadID,
		PropertyID: n.PropertyID,
	}
}
