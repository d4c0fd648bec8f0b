package database

import (
	"context"
	"database/sql"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
)

// DashboardStats feeds the dashboard aggregate view. Counts exclude
// soft-deleted rows.
type DashboardStats struct {
	Leads         LeadStats        `json:"leads"`
	Organizations CountStats       `json:"organizations"`
	Contacts      CountStats       `json:"contacts"`
	Opportunities OpportunityStats `json:"opportunities"`
	Tasks         TaskStats        `json:"tasks"`
	Calls         CallStats        `json:"calls"`
}

type CountStats struct {
	Total  int `json:"total"`
	Recent int `json:"recent"`
}

type LeadStats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Assigned  int `json:"assigned"`
	InProcess int `json:"in_process"`
	Converted int `json:"converted"`
}

type OpportunityStats struct {
	Total       int     `json:"total"`
	Open        int     `json:"open"`
	Won         int     `json:"won"`
	Lost        int     `json:"lost"`
	TotalAmount float64 `json:"total_amount"`
	WonAmount   float64 `json:"won_amount"`
}

type TaskStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

type CallStats struct {
	Total   int `json:"total"`
	Planned int `json:"planned"`
	Held    int `json:"held"`
	NotHeld int `json:"not_held"`
}

type Activity struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type StatsRepository struct {
	DB *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{DB: db}
}

func (r *StatsRepository) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COUNT(*) FILTER (WHERE status = $4)
		FROM leads WHERE deleted = FALSE
	`, entity.LeadStatusNew, entity.LeadStatusAssigned, entity.LeadStatusInProcess, entity.LeadStatusConverted).Scan(
		&stats.Leads.Total, &stats.Leads.New, &stats.Leads.Assigned,
		&stats.Leads.InProcess, &stats.Leads.Converted,
	)
	if err != nil {
		return nil, err
	}

	err = r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days')
		FROM organizations WHERE deleted = FALSE
	`).Scan(&stats.Organizations.Total, &stats.Organizations.Recent)
	if err != nil {
		return nil, err
	}

	err = r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days')
		FROM contacts WHERE deleted = FALSE
	`).Scan(&stats.Contacts.Total, &stats.Contacts.Recent)
	if err != nil {
		return nil, err
	}

	err = r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE stage NOT IN ($1, $2)),
			COUNT(*) FILTER (WHERE stage = $1),
			COUNT(*) FILTER (WHERE stage = $2),
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(amount) FILTER (WHERE stage = $1), 0)
		FROM opportunities WHERE deleted = FALSE
	`, entity.StageClosedWon, entity.StageClosedLost).Scan(
		&stats.Opportunities.Total, &stats.Opportunities.Open,
		&stats.Opportunities.Won, &stats.Opportunities.Lost,
		&stats.Opportunities.TotalAmount, &stats.Opportunities.WonAmount,
	)
	if err != nil {
		return nil, err
	}

	err = r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COUNT(*) FILTER (WHERE status IN ($1, $2) AND date_end < NOW())
		FROM tasks WHERE deleted = FALSE
	`, entity.TaskStatusNotStarted, entity.TaskStatusInProgress, entity.TaskStatusCompleted).Scan(
		&stats.Tasks.Total, &stats.Tasks.Pending, &stats.Tasks.InProgress,
		&stats.Tasks.Completed, &stats.Tasks.Overdue,
	)
	if err != nil {
		return nil, err
	}

	err = r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM calls WHERE deleted = FALSE
	`, entity.CallStatusPlanned, entity.CallStatusHeld, entity.CallStatusNotHeld).Scan(
		&stats.Calls.Total, &stats.Calls.Planned, &stats.Calls.Held, &stats.Calls.NotHeld,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *StatsRepository) RecentActivities(ctx context.Context, limit int) ([]Activity, error) {
	query := `
		SELECT type, id, name, created_at FROM (
			SELECT 'Lead' AS type, id, TRIM(first_name || ' ' || last_name) AS name, created_at
			FROM leads WHERE deleted = FALSE
			UNION ALL
			SELECT 'Organization', id, name, created_at
			FROM organizations WHERE deleted = FALSE
			UNION ALL
			SELECT 'Contact', id, TRIM(first_name || ' ' || last_name), created_at
			FROM contacts WHERE deleted = FALSE
			UNION ALL
			SELECT 'Opportunity', id, name, created_at
			FROM opportunities WHERE deleted = FALSE
			UNION ALL
			SELECT 'Task', id, name, created_at
			FROM tasks WHERE deleted = FALSE
			UNION ALL
			SELECT 'Call', id, name, created_at
			FROM calls WHERE deleted = FALSE
		) recent
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.Type, &a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}
