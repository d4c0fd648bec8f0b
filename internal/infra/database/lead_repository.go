package database

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/nextgencrm/nextgencrm-go/internal/entity"
)

var ErrNotFound = errors.New("record not found")

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, first_name, last_name, salutation_name, title, account_name,
	website, industry, email_address, phone_number, status, source,
	assigned_user_id, assigned_email, description,
	opportunity_amount, opportunity_amount_currency,
	converted, converted_at, deleted, created_at, updated_at
`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID, lead.FirstName, lead.LastName,
		nullString(lead.Salutation), nullString(lead.Title), nullString(lead.AccountName),
		nullString(lead.Website), nullString(lead.Industry),
		nullString(lead.EmailAddress), nullString(lead.PhoneNumber),
		lead.Status, nullString(lead.Source),
		nullString(lead.AssignedUserID), nullString(lead.AssignedEmail), nullString(lead.Description),
		lead.OpportunityAmount, lead.AmountCurrency,
		lead.Converted, nullTime(lead.ConvertedAt),
		lead.Deleted, lead.CreatedAt, lead.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errors.New("lead already exists")
		}
		log.Printf("lead insert failed: %v", err)
		return err
	}

	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND deleted = FALSE`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return lead, err
}

func (r *LeadRepository) List(ctx context.Context, status string, limit, offset int) ([]*entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE deleted = FALSE AND ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET
			first_name = $2, last_name = $3, salutation_name = $4, title = $5,
			account_name = $6, website = $7, industry = $8,
			email_address = $9, phone_number = $10, status = $11, source = $12,
			assigned_user_id = $13, assigned_email = $14, description = $15,
			opportunity_amount = $16, opportunity_amount_currency = $17,
			updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE AND converted = FALSE
	`

	res, err := r.DB.ExecContext(ctx, query,
		lead.ID, lead.FirstName, lead.LastName,
		nullString(lead.Salutation), nullString(lead.Title), nullString(lead.AccountName),
		nullString(lead.Website), nullString(lead.Industry),
		nullString(lead.EmailAddress), nullString(lead.PhoneNumber),
		lead.Status, nullString(lead.Source),
		nullString(lead.AssignedUserID), nullString(lead.AssignedEmail), nullString(lead.Description),
		lead.OpportunityAmount, lead.AmountCurrency,
	)
	if err != nil {
		return err
	}

	// Converted leads are immutable apart from soft delete.
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *LeadRepository) SoftDelete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// MarkConverted flips the converted flag only when it is still unset, so a
// concurrent second conversion loses the race at the database.
func (r *LeadRepository) MarkConverted(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET converted = TRUE, converted_at = $2, status = $3, updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE AND converted = FALSE
	`, id, at, entity.LeadStatusConverted)
	if err != nil {
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadAlreadyConverted
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var salutation, title, accountName, website, industry sql.NullString
	var email, phone, source, assignedUser, assignedEmail, description sql.NullString
	var amount sql.NullFloat64
	var convertedAt sql.NullTime

	err := row.Scan(
		&lead.ID, &lead.FirstName, &lead.LastName, &salutation, &title, &accountName,
		&website, &industry, &email, &phone, &lead.Status, &source,
		&assignedUser, &assignedEmail, &description,
		&amount, &lead.AmountCurrency,
		&lead.Converted, &convertedAt, &lead.Deleted, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Salutation = salutation.String
	lead.Title = title.String
	lead.AccountName = accountName.String
	lead.Website = website.String
	lead.Industry = industry.String
	lead.EmailAddress = email.String
	lead.PhoneNumber = phone.String
	lead.Source = source.String
	lead.AssignedUserID = assignedUser.String
	lead.AssignedEmail = assignedEmail.String
	lead.Description = description.String
	if amount.Valid {
		lead.OpportunityAmount = &amount.Float64
	}
	if convertedAt.Valid {
		lead.ConvertedAt = &convertedAt.Time
	}

	return &lead, nil
}
