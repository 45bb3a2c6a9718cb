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
	"github.com/lib/pq"

	"github.com/verdantiq/cultiva-api/internal/models"
)

// PlantRepository manages persistence for tracked plants.
type PlantRepository struct {
	db *sqlx.DB
}

// NewPlantRepository constructs a new repository.
func NewPlantRepository(db *sqlx.DB) *PlantRepository {
	return &PlantRepository{db: db}
}

const plantColumns = "id, control_number, environment_id, strain_id, stage, source, mother_id, batch_id, planted_at, notes, created_by, created_at, updated_at"

// List returns plants per provided filter.
func (r *PlantRepository) List(ctx context.Context, filter models.PlantFilter) ([]models.Plant, int, error) {
	base := "FROM plants"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.EnvironmentID != "" {
		where = append(where, fmt.Sprintf("environment_id = $%d", len(args)+1))
		args = append(args, filter.EnvironmentID)
	}
	if filter.StrainID != "" {
		where = append(where, fmt.Sprintf("strain_id = $%d", len(args)+1))
		args = append(args, filter.StrainID)
	}
	if filter.Stage != nil {
		where = append(where, fmt.Sprintf("stage = $%d", len(args)+1))
		args = append(args, string(*filter.Stage))
	}
	if filter.BatchID != "" {
		where = append(where, fmt.Sprintf("batch_id = $%d", len(args)+1))
		args = append(args, filter.BatchID)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("control_number ILIKE $%d", len(args)+1))
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
	query := fmt.Sprintf(`SELECT %s
%s WHERE %s ORDER BY planted_at DESC, created_at DESC LIMIT %d OFFSET %d`, plantColumns, base, whereClause, size, offset)
	var plants []models.Plant
	if err := r.db.SelectContext(ctx, &plants, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list plants: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count plants: %w", err)
	}
	return plants, total, nil
}

// GetByID fetches one plant.
func (r *PlantRepository) GetByID(ctx context.Context, id string) (*models.Plant, error) {
	query := fmt.Sprintf("SELECT %s FROM plants WHERE id = $1", plantColumns)
	var plant models.Plant
	if err := r.db.GetContext(ctx, &plant, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plant: %w", err)
	}
	return &plant, nil
}

// GetByControlNumber fetches one plant by its assigned control number.
func (r *PlantRepository) GetByControlNumber(ctx context.Context, controlNumber string) (*models.Plant, error) {
	query := fmt.Sprintf("SELECT %s FROM plants WHERE control_number = $1", plantColumns)
	var plant models.Plant
	if err := r.db.GetContext(ctx, &plant, query, controlNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plant by control number: %w", err)
	}
	return &plant, nil
}

// Create inserts a new plant.
func (r *PlantRepository) Create(ctx context.Context, plant *models.Plant) error {
	prepareCreate(plant)
	query := `INSERT INTO plants (id, control_number, environment_id, strain_id, stage, source, mother_id, batch_id, planted_at, notes, created_by, created_at, updated_at)
VALUES (:id, :control_number, :environment_id, :strain_id, :stage, :source, :mother_id, :batch_id, :planted_at, :notes, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plant); err != nil {
		return fmt.Errorf("create plant: %w", err)
	}
	return nil
}

// CreateBatch inserts a batch of sibling clones in one transaction so either
// the whole batch exists or none of it does.
func (r *PlantRepository) CreateBatch(ctx context.Context, plants []*models.Plant) error {
	if len(plants) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clone batch: %w", err)
	}
	defer tx.Rollback()
	query := `INSERT INTO plants (id, control_number, environment_id, strain_id, stage, source, mother_id, batch_id, planted_at, notes, created_by, created_at, updated_at)
VALUES (:id, :control_number, :environment_id, :strain_id, :stage, :source, :mother_id, :batch_id, :planted_at, :notes, :created_by, :created_at, :updated_at)`
	for _, plant := range plants {
		prepareCreate(plant)
		if _, err := tx.NamedExecContext(ctx, query, plant); err != nil {
			return fmt.Errorf("create clone batch plant: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clone batch: %w", err)
	}
	return nil
}

func prepareCreate(plant *models.Plant) {
	if plant.ID == "" {
		plant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if plant.CreatedAt.IsZero() {
		plant.CreatedAt = now
	}
	plant.UpdatedAt = now
}

// Update modifies a plant. The control number and environment are fixed at
// creation.
func (r *PlantRepository) Update(ctx context.Context, plant *models.Plant) error {
	plant.UpdatedAt = time.Now().UTC()
	query := `UPDATE plants SET strain_id = :strain_id, stage = :stage, planted_at = :planted_at, notes = :notes, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, plant); err != nil {
		return fmt.Errorf("update plant: %w", err)
	}
	return nil
}

// Delete removes a plant.
func (r *PlantRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM plants WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete plant: %w", err)
	}
	return nil
}

// ListIDsByEnvironment returns the ids of plants in an environment at a given
// set of stages. Used by bulk action fan-out to resolve the "all active" target
// selection.
func (r *PlantRepository) ListIDsByEnvironment(ctx context.Context, environmentID string, stages []models.PlantStage) ([]string, error) {
	where := []string{"environment_id = $1"}
	args := []interface{}{environmentID}
	if len(stages) > 0 {
		values := make([]string, len(stages))
		for i, s := range stages {
			values[i] = string(s)
		}
		args = append(args, pq.Array(values))
		where = append(where, fmt.Sprintf("stage = ANY($%d)", len(args)))
	}
	query := fmt.Sprintf("SELECT id FROM plants WHERE %s ORDER BY control_number ASC", strings.Join(where, " AND "))
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list plant ids: %w", err)
	}
	return ids, nil
}
