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

// DistributionRepository manages persistence for patient distributions.
type DistributionRepository struct {
	db      *sqlx.DB
	harvest *HarvestRepository
}

// NewDistributionRepository constructs a new repository.
func NewDistributionRepository(db *sqlx.DB, harvest *HarvestRepository) *DistributionRepository {
	return &DistributionRepository{db: db, harvest: harvest}
}

const distributionColumns = "id, control_number, harvest_id, patient_id, grams, distributed_at, notes, created_by, created_at, updated_at"

// List returns distributions per provided filter.
func (r *DistributionRepository) List(ctx context.Context, filter models.DistributionFilter) ([]models.Distribution, int, error) {
	base := "FROM distributions"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.CreatedBy != "" {
		where = append(where, fmt.Sprintf("created_by = $%d", len(args)+1))
		args = append(args, filter.CreatedBy)
	}
	if filter.HarvestID != "" {
		where = append(where, fmt.Sprintf("harvest_id = $%d", len(args)+1))
		args = append(args, filter.HarvestID)
	}
	if filter.PatientID != "" {
		where = append(where, fmt.Sprintf("patient_id = $%d", len(args)+1))
		args = append(args, filter.PatientID)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("distributed_at >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("distributed_at <= $%d", len(args)+1))
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
%s WHERE %s ORDER BY distributed_at DESC, created_at DESC LIMIT %d OFFSET %d`, distributionColumns, base, whereClause, size, offset)
	var distributions []models.Distribution
	if err := r.db.SelectContext(ctx, &distributions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list distributions: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count distributions: %w", err)
	}
	return distributions, total, nil
}

// GetByID fetches one distribution.
func (r *DistributionRepository) GetByID(ctx context.Context, id string) (*models.Distribution, error) {
	query := fmt.Sprintf("SELECT %s FROM distributions WHERE id = $1", distributionColumns)
	var dist models.Distribution
	if err := r.db.GetContext(ctx, &dist, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get distribution: %w", err)
	}
	return &dist, nil
}

// Create inserts the distribution and charges the harvest's distributed
// ledger in one transaction. A harvest without enough remaining dry weight
// aborts the insert.
func (r *DistributionRepository) Create(ctx context.Context, dist *models.Distribution) error {
	if dist.ID == "" {
		dist.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if dist.CreatedAt.IsZero() {
		dist.CreatedAt = now
	}
	dist.UpdatedAt = now
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin distribution: %w", err)
	}
	defer tx.Rollback()
	if err := r.harvest.ApplyLedgerDeltaTx(ctx, tx, models.LedgerDelta{HarvestID: dist.HarvestID, DistributedGrams: dist.Grams}); err != nil {
		return err
	}
	query := `INSERT INTO distributions (id, control_number, harvest_id, patient_id, grams, distributed_at, notes, created_by, created_at, updated_at)
VALUES (:id, :control_number, :harvest_id, :patient_id, :grams, :distributed_at, :notes, :created_by, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, dist); err != nil {
		return fmt.Errorf("create distribution: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit distribution: %w", err)
	}
	return nil
}

// Delete removes a distribution and returns its grams to the harvest ledger
// in the same transaction.
func (r *DistributionRepository) Delete(ctx context.Context, id string) error {
	dist, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if dist == nil {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin distribution delete: %w", err)
	}
	defer tx.Rollback()
	if err := r.harvest.ApplyLedgerDeltaTx(ctx, tx, models.LedgerDelta{HarvestID: dist.HarvestID, DistributedGrams: -dist.Grams}); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM distributions WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete distribution: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit distribution delete: %w", err)
	}
	return nil
}

// SumForPatientMonth totals grams distributed to a patient inside the month
// containing the reference time. Used to check monthly allotments.
func (r *DistributionRepository) SumForPatientMonth(ctx context.Context, patientID string, ref time.Time) (float64, error) {
	query := `SELECT COALESCE(SUM(grams),0) FROM distributions
WHERE patient_id = $1 AND date_trunc('month', distributed_at) = date_trunc('month', $2::timestamptz)`
	var total float64
	if err := r.db.GetContext(ctx, &total, query, patientID, ref); err != nil {
		return 0, fmt.Errorf("sum patient distributions: %w", err)
	}
	return total, nil
}
