package database

import (
	"context"
	"database/sql"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
)

type OpportunityRepository struct {
	DB *sql.DB
}

func NewOpportunityRepository(db *sql.DB) *OpportunityRepository {
	return &OpportunityRepository{DB: db}
}

const opportunityColumns = `
	id, name, organization_id, contact_id, amount, amount_currency,
	stage, probability, lead_source, close_date,
	assigned_user_id, description, deleted, created_at, updated_at
`

func (r *OpportunityRepository) Create(ctx context.Context, opp *entity.Opportunity) error {
	query := `
		INSERT INTO opportunities (` + opportunityColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`

	_, err := r.DB.ExecContext(ctx, query,
		opp.ID, opp.Name,
		nullString(opp.OrganizationID), nullString(opp.ContactID),
		opp.Amount, opp.Currency, opp.Stage, opp.Probability,
		nullString(opp.LeadSource), opp.CloseDate,
		nullString(opp.AssignedUserID), nullString(opp.Description),
		opp.Deleted, opp.CreatedAt, opp.UpdatedAt,
	)
	return err
}

func (r *OpportunityRepository) FindByID(ctx context.Context, id string) (*entity.Opportunity, error) {
	query := `SELECT ` + opportunityColumns + ` FROM opportunities WHERE id = $1 AND deleted = FALSE`

	opp, err := scanOpportunity(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return opp, err
}

func (r *OpportunityRepository) List(ctx context.Context, organizationID string, limit, offset int) ([]*entity.Opportunity, error) {
	query := `
		SELECT ` + opportunityColumns + `
		FROM opportunities
		WHERE deleted = FALSE AND ($1 = '' OR organization_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	opps := []*entity.Opportunity{}
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		opps = append(opps, opp)
	}

	return opps, rows.Err()
}

func (r *OpportunityRepository) Update(ctx context.Context, opp *entity.Opportunity) error {
	query := `
		UPDATE opportunities SET
			name = $2, organization_id = $3, contact_id = $4, amount = $5,
			amount_currency = $6, stage = $7, probability = $8,
			lead_source = $9, close_date = $10,
			assigned_user_id = $11, description = $12, updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE
	`

	res, err := r.DB.ExecContext(ctx, query,
		opp.ID, opp.Name,
		nullString(opp.OrganizationID), nullString(opp.ContactID),
		opp.Amount, opp.Currency, opp.Stage, opp.Probability,
		nullString(opp.LeadSource), opp.CloseDate,
		nullString(opp.AssignedUserID), nullString(opp.Description),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OpportunityRepository) SoftDelete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE opportunities SET deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func scanOpportunity(row rowScanner) (*entity.Opportunity, error) {
	var opp entity.Opportunity
	var orgID, contactID, leadSource, assignedUser, description sql.NullString

	err := row.Scan(
		&opp.ID, &opp.Name, &orgID, &contactID, &opp.Amount, &opp.Currency,
		&opp.Stage, &opp.Probability, &leadSource, &opp.CloseDate,
		&assignedUser, &description,
		&opp.Deleted, &opp.CreatedAt, &opp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	opp.OrganizationID = orgID.String
	opp.ContactID = contactID.String
	opp.LeadSource = leadSource.String
	opp.AssignedUserID = assignedUser.String
	opp.Description = description.String

	return &opp, nil
}
