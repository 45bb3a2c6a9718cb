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
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

// HarvestRepository manages persistence for harvests and their weight
// ledgers.
type HarvestRepository struct {
	db *sqlx.DB
}

// NewHarvestRepository constructs a new repository.
func NewHarvestRepository(db *sqlx.DB) *HarvestRepository {
	return &HarvestRepository{db: db}
}

const harvestColumns = "id, control_number, environment_id, plant_id, strain_id, harvested_at, wet_weight_grams, dry_weight_grams, distributed_grams, extracted_grams, notes, created_by, created_at, updated_at"

// List returns harvests per provided filter.
func (r *HarvestRepository) List(ctx context.Context, filter models.HarvestFilter) ([]models.Harvest, int, error) {
	base := "FROM harvests"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.EnvironmentID != "" {
		where = append(where, fmt.Sprintf("environment_id = $%d", len(args)+1))
		args = append(args, filter.EnvironmentID)
	}
	if filter.PlantID != "" {
		where = append(where, fmt.Sprintf("plant_id = $%d", len(args)+1))
		args = append(args, filter.PlantID)
	}
	if filter.StrainID != "" {
		where = append(where, fmt.Sprintf("strain_id = $%d", len(args)+1))
		args = append(args, filter.StrainID)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("harvested_at >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("harvested_at <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
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
%s WHERE %s ORDER BY harvested_at DESC, created_at DESC LIMIT %d OFFSET %d`, harvestColumns, base, whereClause, size, offset)
	var harvests []models.Harvest
	if err := r.db.SelectContext(ctx, &harvests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list harvests: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count harvests: %w", err)
	}
	return harvests, total, nil
}

// GetByID fetches one harvest.
func (r *HarvestRepository) GetByID(ctx context.Context, id string) (*models.Harvest, error) {
	query := fmt.Sprintf("SELECT %s FROM harvests WHERE id = $1", harvestColumns)
	var harvest models.Harvest
	if err := r.db.GetContext(ctx, &harvest, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get harvest: %w", err)
	}
	return &harvest, nil
}

// Create inserts a new harvest with zeroed ledgers.
func (r *HarvestRepository) Create(ctx context.Context, harvest *models.Harvest) error {
	if harvest.ID == "" {
		harvest.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if harvest.CreatedAt.IsZero() {
		harvest.CreatedAt = now
	}
	harvest.UpdatedAt = now
	harvest.DistributedGrams = 0
	harvest.ExtractedGrams = 0
	query := `INSERT INTO harvests (id, control_number, environment_id, plant_id, strain_id, harvested_at, wet_weight_grams, dry_weight_grams, distributed_grams, extracted_grams, notes, created_by, created_at, updated_at)
VALUES (:id, :control_number, :environment_id, :plant_id, :strain_id, :harvested_at, :wet_weight_grams, :dry_weight_grams, :distributed_grams, :extracted_grams, :notes, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, harvest); err != nil {
		return fmt.Errorf("create harvest: %w", err)
	}
	return nil
}

// Update modifies harvest weights and notes. Ledger columns are only touched
// through ApplyLedgerDelta.
func (r *HarvestRepository) Update(ctx context.Context, harvest *models.Harvest) error {
	harvest.UpdatedAt = time.Now().UTC()
	query := `UPDATE harvests SET harvested_at = :harvested_at, wet_weight_grams = :wet_weight_grams, dry_weight_grams = :dry_weight_grams, notes = :notes, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, harvest); err != nil {
		return fmt.Errorf("update harvest: %w", err)
	}
	return nil
}

// Delete removes a harvest.
func (r *HarvestRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM harvests WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete harvest: %w", err)
	}
	return nil
}

// ApplyLedgerDelta atomically adjusts a harvest's distributed and extracted
// totals. The WHERE clause enforces the ledger invariant in the same
// statement: each total stays non-negative and their sum never exceeds the dry
// weight. Zero rows affected means the delta would have violated it.
func (r *HarvestRepository) ApplyLedgerDelta(ctx context.Context, delta models.LedgerDelta) error {
	return applyLedgerDelta(ctx, r.db, delta)
}

// ApplyLedgerDeltaTx is ApplyLedgerDelta inside a caller-owned transaction.
// Used by extract creation to keep multi-harvest draws all-or-nothing.
func (r *HarvestRepository) ApplyLedgerDeltaTx(ctx context.Context, tx *sqlx.Tx, delta models.LedgerDelta) error {
	return applyLedgerDelta(ctx, tx, delta)
}

func applyLedgerDelta(ctx context.Context, ext sqlx.ExtContext, delta models.LedgerDelta) error {
	query := `UPDATE harvests
SET distributed_grams = distributed_grams + $2,
    extracted_grams = extracted_grams + $3,
    updated_at = NOW()
WHERE id = $1
  AND distributed_grams + $2 >= 0
  AND extracted_grams + $3 >= 0
  AND distributed_grams + $2 + extracted_grams + $3 <= dry_weight_grams`
	res, err := ext.ExecContext(ctx, query, delta.HarvestID, delta.DistributedGrams, delta.ExtractedGrams)
	if err != nil {
		return fmt.Errorf("apply harvest ledger delta: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply harvest ledger delta: %w", err)
	}
	if affected == 0 {
		return appErrors.ErrLedgerExceeded
	}
	return nil
}
