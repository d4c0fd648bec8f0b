package database

import (
	"context"
	"database/sql"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
)

type TaskRepository struct {
	DB *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

const taskColumns = `
	id, name, status, priority, parent_type, parent_id,
	assigned_user_id, description, date_end, deleted, created_at, updated_at
`

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`

	_, err := r.DB.ExecContext(ctx, query,
		task.ID, task.Name, task.Status,
		nullString(task.Priority), nullString(task.ParentType), nullString(task.ParentID),
		nullString(task.AssignedUserID), nullString(task.Description),
		nullTime(task.DateEnd), task.Deleted, task.CreatedAt, task.UpdatedAt,
	)
	return err
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND deleted = FALSE`

	task, err := scanTask(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return task, err
}

func (r *TaskRepository) List(ctx context.Context, status string, limit, offset int) ([]*entity.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE deleted = FALSE AND ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*entity.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	query := `
		UPDATE tasks SET
			name = $2, status = $3, priority = $4, parent_type = $5, parent_id = $6,
			assigned_user_id = $7, description = $8, date_end = $9, updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE
	`

	res, err := r.DB.ExecContext(ctx, query,
		task.ID, task.Name, task.Status,
		nullString(task.Priority), nullString(task.ParentType), nullString(task.ParentID),
		nullString(task.AssignedUserID), nullString(task.Description),
		nullTime(task.DateEnd),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) SoftDelete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE tasks SET deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func scanTask(row rowScanner) (*entity.Task, error) {
	var task entity.Task
	var priority, parentType, parentID, assignedUser, description sql.NullString
	var dateEnd sql.NullTime

	err := row.Scan(
		&task.ID, &task.Name, &task.Status, &priority, &parentType, &parentID,
		&assignedUser, &description, &dateEnd,
		&task.Deleted, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Priority = priority.String
	task.ParentType = parentType.String
	task.ParentID = parentID.String
	task.AssignedUserID = assignedUser.String
	task.Description = description.String
	if dateEnd.Valid {
		task.DateEnd = &dateEnd.Time
	}

	return &task, nil
}
