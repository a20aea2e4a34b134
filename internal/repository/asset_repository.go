package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/facility-service/internal/domain"
)

// AssetFilter captures asset list parameters.
type AssetFilter struct {
	Type       *string
	Healths    []domain.AssetHealth
	SearchTerm *string
	SortByName bool
	Descending bool
}

// AssetRepository encapsulates asset persistence.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	Update(ctx context.Context, asset *domain.Asset) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error)
}

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository instantiates the postgres-backed repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
        INSERT INTO assets (id, name, type, location, health, last_maintenance, next_maintenance, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.pool.Exec(ctx, query,
		asset.ID,
		asset.Name,
		asset.Type,
		asset.Location,
		asset.Health,
		asset.LastMaintenance,
		asset.NextMaintenance,
		asset.CreatedAt,
		asset.UpdatedAt,
	)
	return err
}

func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	const query = `
        UPDATE assets SET name=$1, type=$2, location=$3, health=$4,
            last_maintenance=$5, next_maintenance=$6, updated_at=$7
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		asset.Name,
		asset.Type,
		asset.Location,
		asset.Health,
		asset.LastMaintenance,
		asset.NextMaintenance,
		asset.UpdatedAt,
		asset.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	const query = `
        SELECT id, name, type, location, health, last_maintenance, next_maintenance, created_at, updated_at
        FROM assets WHERE id=$1`
	var asset domain.Asset
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&asset.ID,
		&asset.Name,
		&asset.Type,
		&asset.Location,
		&asset.Health,
		&asset.LastMaintenance,
		&asset.NextMaintenance,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error) {
	base := `SELECT id, name, type, location, health, last_maintenance, next_maintenance, created_at, updated_at
             FROM assets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if len(filter.Healths) > 0 {
		placeholders := make([]string, len(filter.Healths))
		for i, h := range filter.Healths {
			args = append(args, h)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("health IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(id) LIKE %s OR LOWER(location) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	order := "seq ASC"
	if filter.SortByName {
		order = "name ASC"
		if filter.Descending {
			order = "name DESC"
		}
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY %s", base, strings.Join(clauses, " AND "), order)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Asset
	for rows.Next() {
		var asset domain.Asset
		if err := rows.Scan(
			&asset.ID,
			&asset.Name,
			&asset.Type,
			&asset.Location,
			&asset.Health,
			&asset.LastMaintenance,
			&asset.NextMaintenance,
			&asset.CreatedAt,
			&asset.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, asset)
	}
	return result, rows.Err()
}
