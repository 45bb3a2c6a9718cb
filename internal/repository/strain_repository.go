package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/verdantiq/cultiva-api/internal/models"
)

// StrainRepository manages persistence for the genetics catalogue.
type StrainRepository struct {
	db *sqlx.DB
}

// NewStrainRepository constructs a new repository.
func NewStrainRepository(db *sqlx.DB) *StrainRepository {
	return &StrainRepository{db: db}
}

// List returns strains per provided filter.
func (r *StrainRepository) List(ctx context.Context, filter models.StrainFilter) ([]models.Strain, int, error) {
	base := "FROM strains"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Type != nil {
		where = append(where, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, string(*filter.Type))
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size
	query := fmt.Sprintf(`SELECT id, name, type, thc_percent, cbd_percent, flowering_days, notes, created_at, updated_at
%s WHERE %s ORDER BY name ASC LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	var strains []models.Strain
	if err := r.db.SelectContext(ctx, &strains, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list strains: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count strains: %w", err)
	}
	return strains, total, nil
}

// GetByID fetches one strain.
func (r *StrainRepository) GetByID(ctx context.Context, id string) (*models.Strain, error) {
	query := `SELECT id, name, type, thc_percent, cbd_percent, flowering_days, notes, created_at, updated_at
FROM strains WHERE id = $1`
	var strain models.Strain
	if err := r.db.GetContext(ctx, &strain, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get strain: %w", err)
	}
	return &strain, nil
}

// Create inserts a new strain.
func (r *StrainRepository) Create(ctx context.Context, strain *models.Strain) error {
	if strain.ID == "" {
		strain.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if strain.CreatedAt.IsZero() {
		strain.CreatedAt = now
	}
	strain.UpdatedAt = now
	query := `INSERT INTO strains (id, name, type, thc_percent, cbd_percent, flowering_days, notes, created_at, updated_at)
VALUES (:id, :name, :type, :thc_percent, :cbd_percent, :flowering_days, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, strain); err != nil {
		return fmt.Errorf("create strain: %w", err)
	}
	return nil
}

// Update modifies an existing strain.
func (r *StrainRepository) Update(ctx context.Context, strain *models.Strain) error {
	strain.UpdatedAt = time.Now().UTC()
	query := `UPDATE strains SET name = :name, type = :type, thc_percent = :thc_percent, cbd_percent = :cbd_percent, flowering_days = :flowering_days, notes = :notes, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, strain); err != nil {
		return fmt.Errorf("update strain: %w", err)
	}
	return nil
}

// Delete removes a strain.
func (r *StrainRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM strains WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete strain: %w", err)
	}
	return nil
}
