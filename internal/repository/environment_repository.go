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

// EnvironmentRepository manages persistence for growing environments.
type EnvironmentRepository struct {
	db *sqlx.DB
}

// NewEnvironmentRepository constructs a new repository.
func NewEnvironmentRepository(db *sqlx.DB) *EnvironmentRepository {
	return &EnvironmentRepository{db: db}
}

// List returns environments per provided filter.
func (r *EnvironmentRepository) List(ctx context.Context, filter models.EnvironmentFilter) ([]models.Environment, int, error) {
	base := "FROM environments"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.OwnerID != "" {
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)+1))
		args = append(args, filter.OwnerID)
	}
	if filter.Type != nil {
		where = append(where, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, string(*filter.Type))
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
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
	query := fmt.Sprintf(`SELECT id, name, type, description, owner_id, active, created_at, updated_at
%s WHERE %s ORDER BY name ASC LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	var environments []models.Environment
	if err := r.db.SelectContext(ctx, &environments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list environments: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count environments: %w", err)
	}
	return environments, total, nil
}

// GetByID fetches one environment.
func (r *EnvironmentRepository) GetByID(ctx context.Context, id string) (*models.Environment, error) {
	query := `SELECT id, name, type, description, owner_id, active, created_at, updated_at
FROM environments WHERE id = $1`
	var env models.Environment
	if err := r.db.GetContext(ctx, &env, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get environment: %w", err)
	}
	return &env, nil
}

// Create inserts a new environment.
func (r *EnvironmentRepository) Create(ctx context.Context, env *models.Environment) error {
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if env.CreatedAt.IsZero() {
		env.CreatedAt = now
	}
	env.UpdatedAt = now
	query := `INSERT INTO environments (id, name, type, description, owner_id, active, created_at, updated_at)
VALUES (:id, :name, :type, :description, :owner_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, env); err != nil {
		return fmt.Errorf("create environment: %w", err)
	}
	return nil
}

// Update modifies an existing environment. The owner is fixed at creation.
func (r *EnvironmentRepository) Update(ctx context.Context, env *models.Environment) error {
	env.UpdatedAt = time.Now().UTC()
	query := `UPDATE environments SET name = :name, type = :type, description = :description, active = :active, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, env); err != nil {
		return fmt.Errorf("update environment: %w", err)
	}
	return nil
}

// Delete removes an environment.
func (r *EnvironmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM environments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete environment: %w", err)
	}
	return nil
}
