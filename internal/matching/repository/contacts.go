package repository

import (
	"context"

	"realty_crm_backend/internal/matching/ports"

	"github.com/google/uuid"
)

const (
	opGetUserContact       = "matching.repository.get_user_contact"
	opGetOrganizationPhone = "matching.repository.get_organization_phone"
)

const getUserContactQuery = `SELECT id, organization_id, name, email, COALESCE(phone, '')
	FROM users WHERE id = $1`

const getOrganizationPhoneQuery = `SELECT COALESCE(phone, '') FROM organizations WHERE id = $1`

func (r *Repository) GetUserContact(ctx context.Context, userID uuid.UUID) (ports.UserContact, error) {
	if err := r.ready(opGetUserContact); err != nil {
		return ports.UserContact{}, err
	}
	var c ports.UserContact
	err := r.pool.QueryRow(ctx, getUserContactQuery, userID).Scan(&c.UserID, &c.OrganizationID, &c.Name, &c.Email, &c.Phone)
	if err != nil {
		return ports.UserContact{}, mapError(opGetUserContact, "user not found", err)
	}
	return c, nil
}

func (r *Repository) GetOrganizationPhone(ctx context.Context, organizationID uuid.UUID) (string, error) {
	if err := r.ready(opGetOrganizationPhone); err != nil {
		return "", err
	}
	var phone string
	if err := r.pool.QueryRow(ctx, getOrganizationPhoneQuery, organizationID).Scan(&phone); err != nil {
		return "", mapError(opGetOrganizationPhone, "organization not found", err)
	}
	return phone, nil
}
