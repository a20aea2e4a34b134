package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/facility-service/internal/domain"
)

// RequestSort orders list results.
type RequestSort string

const (
	// SortInsertion preserves creation order, the repository default.
	SortInsertion RequestSort = ""
	SortNewest    RequestSort = "newest"
	SortOldest    RequestSort = "oldest"
)

// RequestFilter captures list parameters.
type RequestFilter struct {
	ReporterID *string
	AssigneeID *string
	// InvolvedUserID matches requests where the user is reporter or assignee.
	InvolvedUserID *string
	Statuses       []domain.RequestStatus
	Priorities     []domain.RequestPriority
	SearchTerm     *string
	Sort           RequestSort
	Limit          int
	Offset         int
}

// RequestRepository encapsulates request persistence. Update replaces the
// stored record by ID; implementations never alias caller values, so readers
// never observe a partially updated request.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.Request) error
	Update(ctx context.Context, req *domain.Request) error
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.Request, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the postgres-backed repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.Request) error {
	const query = `
        INSERT INTO requests (id, title, description, category, location, priority, status,
            reporter_id, assignee_id, asset_id, workflow, audit_log, files, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	_, err := r.pool.Exec(ctx, query,
		req.ID,
		req.Title,
		req.Description,
		req.Category,
		req.Location,
		req.Priority,
		req.Status,
		req.ReporterID,
		req.AssigneeID,
		req.AssetID,
		req.Workflow,
		req.AuditLog,
		req.Files,
		req.CreatedAt,
		req.UpdatedAt,
	)
	return err
}

func (r *requestRepository) Update(ctx context.Context, req *domain.Request) error {
	const query = `
        UPDATE requests SET title=$1, description=$2, category=$3, location=$4, priority=$5,
            status=$6, assignee_id=$7, asset_id=$8, workflow=$9, audit_log=$10, files=$11, updated_at=$12
        WHERE id=$13`
	cmd, err := r.pool.Exec(ctx, query,
		req.Title,
		req.Description,
		req.Category,
		req.Location,
		req.Priority,
		req.Status,
		req.AssigneeID,
		req.AssetID,
		req.Workflow,
		req.AuditLog,
		req.Files,
		req.UpdatedAt,
		req.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	const query = `
        SELECT id, title, description, category, location, priority, status,
               reporter_id, assignee_id, asset_id, workflow, audit_log, files, created_at, updated_at
        FROM requests WHERE id=$1`
	var req domain.Request
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.Title,
		&req.Description,
		&req.Category,
		&req.Location,
		&req.Priority,
		&req.Status,
		&req.ReporterID,
		&req.AssigneeID,
		&req.AssetID,
		&req.Workflow,
		&req.AuditLog,
		&req.Files,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.Request, error) {
	base := `SELECT id, title, description, category, location, priority, status,
                    reporter_id, assignee_id, asset_id, workflow, audit_log, files, created_at, updated_at
             FROM requests`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.InvolvedUserID != nil {
		args = append(args, *filter.InvolvedUserID)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(reporter_id=%s OR assignee_id=%s)", placeholder, placeholder))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s OR LOWER(id) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	order := "seq ASC"
	switch filter.Sort {
	case SortNewest:
		order = "created_at DESC"
	case SortOldest:
		order = "created_at ASC"
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY %s", base, strings.Join(clauses, " AND "), order)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Request
	for rows.Next() {
		var req domain.Request
		if err := rows.Scan(
			&req.ID,
			&req.Title,
			&req.Description,
			&req.Category,
			&req.Location,
			&req.Priority,
			&req.Status,
			&req.ReporterID,
			&req.AssigneeID,
			&req.AssetID,
			&req.Workflow,
			&req.AuditLog,
			&req.Files,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}
