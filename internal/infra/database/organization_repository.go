package database

import (
	"context"
	"database/sql"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
)

type OrganizationRepository struct {
	DB *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{DB: db}
}

const organizationColumns = `
	id, name, website, industry, email_address, phone_number,
	billing_address_city, billing_address_country,
	assigned_user_id, description, deleted, created_at, updated_at
`

func (r *OrganizationRepository) Create(ctx context.Context, org *entity.Organization) error {
	query := `
		INSERT INTO organizations (` + organizationColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`

	_, err := r.DB.ExecContext(ctx, query,
		org.ID, org.Name,
		nullString(org.Website), nullString(org.Industry),
		nullString(org.EmailAddress), nullString(org.PhoneNumber),
		nullString(org.BillingCity), nullString(org.BillingCountry),
		nullString(org.AssignedUserID), nullString(org.Description),
		org.Deleted, org.CreatedAt, org.UpdatedAt,
	)
	return err
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*entity.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1 AND deleted = FALSE`

	org, err := scanOrganization(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return org, err
}

func (r *OrganizationRepository) List(ctx context.Context, limit, offset int) ([]*entity.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		WHERE deleted = FALSE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := []*entity.Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}

	return orgs, rows.Err()
}

func (r *OrganizationRepository) Update(ctx context.Context, org *entity.Organization) error {
	query := `
		UPDATE organizations SET
			name = $2, website = $3, industry = $4, email_address = $5,
			phone_number = $6, billing_address_city = $7, billing_address_country = $8,
			assigned_user_id = $9, description = $10, updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE
	`

	res, err := r.DB.ExecContext(ctx, query,
		org.ID, org.Name,
		nullString(org.Website), nullString(org.Industry),
		nullString(org.EmailAddress), nullString(org.PhoneNumber),
		nullString(org.BillingCity), nullString(org.BillingCountry),
		nullString(org.AssignedUserID), nullString(org.Description),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrganizationRepository) SoftDelete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE organizations SET deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func scanOrganization(row rowScanner) (*entity.Organization, error) {
	var org entity.Organization
	var website, industry, email, phone, city, country, assignedUser, description sql.NullString

	err := row.Scan(
		&org.ID, &org.Name, &website, &industry, &email, &phone,
		&city, &country, &assignedUser, &description,
		&org.Deleted, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	org.Website = website.String
	org.Industry = industry.String
	org.EmailAddress = email.String
	org.PhoneNumber = phone.String
	org.BillingCity = city.String
	org.BillingCountry = country.String
	org.AssignedUserID = assignedUser.String
	org.Description = description.String

	return &org, nil
}
