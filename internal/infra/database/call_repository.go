package database

import (
	"context"
	"database/sql"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
)

type CallRepository struct {
	DB *sql.DB
}

func NewCallRepository(db *sql.DB) *CallRepository {
	return &CallRepository{DB: db}
}

const callColumns = `
	id, name, status, direction, parent_type, parent_id,
	assigned_user_id, description, date_start, date_end,
	deleted, created_at, updated_at
`

func (r *CallRepository) Create(ctx context.Context, call *entity.Call) error {
	query := `
		INSERT INTO calls (` + callColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`

	_, err := r.DB.ExecContext(ctx, query,
		call.ID, call.Name, call.Status,
		nullString(call.Direction), nullString(call.ParentType), nullString(call.ParentID),
		nullString(call.AssignedUserID), nullString(call.Description),
		nullTime(call.DateStart), nullTime(call.DateEnd),
		call.Deleted, call.CreatedAt, call.UpdatedAt,
	)
	return err
}

func (r *CallRepository) FindByID(ctx context.Context, id string) (*entity.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE id = $1 AND deleted = FALSE`

	call, err := scanCall(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return call, err
}

func (r *CallRepository) List(ctx context.Context, status string, limit, offset int) ([]*entity.Call, error) {
	query := `
		SELECT ` + callColumns + `
		FROM calls
		WHERE deleted = FALSE AND ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calls := []*entity.Call{}
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}

	return calls, rows.Err()
}

func (r *CallRepository) Update(ctx context.Context, call *entity.Call) error {
	query := `
		UPDATE calls SET
			name = $2, status = $3, direction = $4, parent_type = $5, parent_id = $6,
			assigned_user_id = $7, description = $8, date_start = $9, date_end = $10,
			updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE
	`

	res, err := r.DB.ExecContext(ctx, query,
		call.ID, call.Name, call.Status,
		nullString(call.Direction), nullString(call.ParentType), nullString(call.ParentID),
		nullString(call.AssignedUserID), nullString(call.Description),
		nullTime(call.DateStart), nullTime(call.DateEnd),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CallRepository) SoftDelete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE calls SET deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func scanCall(row rowScanner) (*entity.Call, error) {
	var call entity.Call
	var direction, parentType, parentID, assignedUser, description sql.NullString
	var dateStart, dateEnd sql.NullTime

	err := row.Scan(
		&call.ID, &call.Name, &call.Status, &direction, &parentType, &parentID,
		&assignedUser, &description, &dateStart, &dateEnd,
		&call.Deleted, &call.CreatedAt, &call.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	call.Direction = direction.String
	call.ParentType = parentType.String
	call.ParentID = parentID.String
	call.AssignedUserID = assignedUser.String
	call.Description = description.String
	if dateStart.Valid {
		call.DateStart = &dateStart.Time
	}
	if dateEnd.Valid {
		call.DateEnd = &dateEnd.Time
	}

	return &call, nil
}
