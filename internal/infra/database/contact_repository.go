package database

import (
	"context"
	"database/sql"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
)

type ContactRepository struct {
	DB *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{DB: db}
}

const contactColumns = `
	id, first_name, last_name, salutation_name, title, organization_id,
	email_address, phone_number, do_not_call,
	assigned_user_id, description, deleted, created_at, updated_at
`

func (r *ContactRepository) Create(ctx context.Context, contact *entity.Contact) error {
	query := `
		INSERT INTO contacts (` + contactColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`

	_, err := r.DB.ExecContext(ctx, query,
		contact.ID, contact.FirstName, contact.LastName,
		nullString(contact.Salutation), nullString(contact.Title),
		nullString(contact.OrganizationID),
		nullString(contact.EmailAddress), nullString(contact.PhoneNumber),
		contact.DoNotCall,
		nullString(contact.AssignedUserID), nullString(contact.Description),
		contact.Deleted, contact.CreatedAt, contact.UpdatedAt,
	)
	return err
}

func (r *ContactRepository) FindByID(ctx context.Context, id string) (*entity.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND deleted = FALSE`

	contact, err := scanContact(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return contact, err
}

func (r *ContactRepository) List(ctx context.Context, organizationID string, limit, offset int) ([]*entity.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE deleted = FALSE AND ($1 = '' OR organization_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []*entity.Contact{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}

	return contacts, rows.Err()
}

func (r *ContactRepository) Update(ctx context.Context, contact *entity.Contact) error {
	query := `
		UPDATE contacts SET
			first_name = $2, last_name = $3, salutation_name = $4, title = $5,
			organization_id = $6, email_address = $7, phone_number = $8,
			do_not_call = $9, assigned_user_id = $10, description = $11,
			updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE
	`

	res, err := r.DB.ExecContext(ctx, query,
		contact.ID, contact.FirstName, contact.LastName,
		nullString(contact.Salutation), nullString(contact.Title),
		nullString(contact.OrganizationID),
		nullString(contact.EmailAddress), nullString(contact.PhoneNumber),
		contact.DoNotCall,
		nullString(contact.AssignedUserID), nullString(contact.Description),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ContactRepository) SoftDelete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE contacts SET deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func scanContact(row rowScanner) (*entity.Contact, error) {
	var contact entity.Contact
	var salutation, title, orgID, email, phone, assignedUser, description sql.NullString

	err := row.Scan(
		&contact.ID, &contact.FirstName, &contact.LastName, &salutation, &title,
		&orgID, &email, &phone, &contact.DoNotCall,
		&assignedUser, &description,
		&contact.Deleted, &contact.CreatedAt, &contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	contact.Salutation = salutation.String
	contact.Title = title.String
	contact.OrganizationID = orgID.String
	contact.EmailAddress = email.String
	contact.PhoneNumber = phone.String
	contact.AssignedUserID = assignedUser.String
	contact.Description = description.String

	return &contact, nil
}
