package repository

import (
	"context"

	"realty_crm_backend/internal/matching/domain"
	"realty_crm_backend/internal/matching/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	opGetLead                 = "matching.repository.get_lead"
	opListActiveLeads         = "matching.repository.list_active_leads"
	opListActiveLeadIDs       = "matching.repository.list_active_lead_ids"
	opGetProperty             = "matching.repository.get_property"
	opListAvailableProperties = "matching.repository.list_available_properties"
	opSetLeadMatchedProperty  = "matching.repository.set_lead_matched_property"

	msgLeadNotFound     = "lead not found"
	msgPropertyNotFound = "property not found"
)

const leadColumns = `id, user_id, organization_id, name, COALESCE(phone, ''), COALESCE(email, ''),
	interest, property_type, min_price_cents, max_price_cents,
	min_bedrooms, max_bedrooms, min_bathrooms, max_bathrooms,
	min_area_sqm::float8, max_area_sqm::float8,
	preferred_cities, preferred_states, needs_financing, status, matched_property_id, updated_at`

const propertyColumns = `id, user_id, organization_id, title, property_type,
	rent_price_cents, sale_price_cents, city, state, bedrooms, bathrooms, area_sqm::float8,
	status, accepts_partnership, accepts_financing, updated_at`

const getLeadQuery = `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

// A nil price parameter excludes every lead with that interest.
const listActiveLeadsQuery = `SELECT ` + leadColumns + `
	FROM leads
	WHERE property_type = $1
	  AND status = 'ACTIVE'
	  AND (
	    (interest = 'RENT' AND $2::bigint > 0 AND COALESCE(min_price_cents, 0) <= $2::bigint AND max_price_cents >= $2::bigint)
	    OR
	    (interest = 'BUY' AND $3::bigint > 0 AND COALESCE(min_price_cents, 0) <= $3::bigint AND max_price_cents >= $3::bigint)
	  )
	ORDER BY updated_at DESC, id
	LIMIT $4`

const listActiveLeadIDsQuery = `SELECT id FROM leads
	WHERE status = 'ACTIVE' AND id > $1
	ORDER BY id
	LIMIT $2`

const getPropertyQuery = `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

const listAvailableRentPropertiesQuery = `SELECT ` + propertyColumns + `
	FROM properties
	WHERE property_type = $1
	  AND status = 'AVAILABLE'
	  AND rent_price_cents > 0
	  AND rent_price_cents BETWEEN $2 AND $3
	ORDER BY updated_at DESC, id
	LIMIT $4`

const listAvailableSalePropertiesQuery = `SELECT ` + propertyColumns + `
	FROM properties
	WHERE property_type = $1
	  AND status = 'AVAILABLE'
	  AND sale_price_cents > 0
	  AND sale_price_cents BETWEEN $2 AND $3
	ORDER BY updated_at DESC, id
	LIMIT $4`

const setLeadMatchedPropertyQuery = `UPDATE leads SET matched_property_id = $2
	WHERE id = $1
	RETURNING id`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var l domain.Lead
	var interest, propertyType, status string
	err := row.Scan(
		&l.ID, &l.UserID, &l.OrganizationID, &l.Name, &l.Phone, &l.Email,
		&interest, &propertyType, &l.MinPriceCents, &l.MaxPriceCents,
		&l.Bedrooms.Min, &l.Bedrooms.Max, &l.Bathrooms.Min, &l.Bathrooms.Max,
		&l.AreaSqm.Min, &l.AreaSqm.Max,
		&l.PreferredCities, &l.PreferredStates, &l.NeedsFinancing, &status, &l.MatchedPropertyID, &l.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	l.Interest = domain.Interest(interest)
	l.PropertyType = domain.PropertyType(propertyType)
	l.Status = domain.LeadStatus(status)
	return l, nil
}

func scanProperty(row pgx.Row) (domain.Property, error) {
	var p domain.Property
	var propertyType, status string
	err := row.Scan(
		&p.ID, &p.UserID, &p.OrganizationID, &p.Title, &propertyType,
		&p.RentPriceCents, &p.SalePriceCents, &p.City, &p.State, &p.Bedrooms, &p.Bathrooms, &p.AreaSqm,
		&status, &p.AcceptsPartnership, &p.AcceptsFinancing, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Property{}, err
	}
	p.PropertyType = domain.PropertyType(propertyType)
	p.Status = domain.PropertyStatus(status)
	return p, nil
}

func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	if err := r.ready(opGetLead); err != nil {
		return domain.Lead{}, err
	}
	lead, err := scanLead(r.pool.QueryRow(ctx, getLeadQuery, id))
	if err != nil {
		return domain.Lead{}, mapError(opGetLead, msgLeadNotFound, err)
	}
	return lead, nil
}

func (r *Repository) ListActiveLeads(ctx context.Context, filter ports.LeadFilter) ([]domain.Lead, error) {
	if err := r.ready(opListActiveLeads); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, listActiveLeadsQuery, string(filter.PropertyType), filter.RentPriceCents, filter.SalePriceCents, filter.Limit)
	if err != nil {
		return nil, mapError(opListActiveLeads, msgLeadNotFound, err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, scanErr := scanLead(rows)
		if scanErr != nil {
			return nil, mapError(opListActiveLeads, msgLeadNotFound, scanErr)
		}
		leads = append(leads, lead)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, mapError(opListActiveLeads, msgLeadNotFound, rowsErr)
	}
	return leads, nil
}

func (r *Repository) ListActiveLeadIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	if err := r.ready(opListActiveLeadIDs); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, listActiveLeadIDsQuery, after, limit)
	if err != nil {
		return nil, mapError(opListActiveLeadIDs, msgLeadNotFound, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, mapError(opListActiveLeadIDs, msgLeadNotFound, err)
	}
	return ids, nil
}

func (r *Repository) GetProperty(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	if err := r.ready(opGetProperty); err != nil {
		return domain.Property{}, err
	}
	property, err := scanProperty(r.pool.QueryRow(ctx, getPropertyQuery, id))
	if err != nil {
		return domain.Property{}, mapError(opGetProperty, msgPropertyNotFound, err)
	}
	return property, nil
}

func (r *Repository) ListAvailableProperties(ctx context.Context, filter ports.PropertyFilter) ([]domain.Property, error) {
	if err := r.ready(opListAvailableProperties); err != nil {
		return nil, err
	}
	query := listAvailableSalePropertiesQuery
	if filter.Interest == domain.InterestRent {
		query = listAvailableRentPropertiesQuery
	}

	rows, err := r.pool.Query(ctx, query, string(filter.PropertyType), filter.MinPriceCents, filter.MaxPriceCents, filter.Limit)
	if err != nil {
		return nil, mapError(opListAvailableProperties, msgPropertyNotFound, err)
	}
	defer rows.Close()

	properties := make([]domain.Property, 0)
	for rows.Next() {
		property, scanErr := scanProperty(rows)
		if scanErr != nil {
			return nil, mapError(opListAvailableProperties, msgPropertyNotFound, scanErr)
		}
		properties = append(properties, property)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, mapError(opListAvailableProperties, msgPropertyNotFound, rowsErr)
	}
	return properties, nil
}

// SetLeadMatchedProperty records propertyID as the lead's matched property.
func (r *Repository) SetLeadMatchedProperty(ctx context.Context, leadID, propertyID uuid.UUID) error {
	if err := r.ready(opSetLeadMatchedProperty); err != nil {
		return err
	}
	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, setLeadMatchedPropertyQuery, leadID, propertyID).Scan(&id); err != nil {
		return mapError(opSetLeadMatchedProperty, msgLeadNotFound, err)
	}
	return nil
}
