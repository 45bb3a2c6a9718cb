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

// ExtractRepository manages persistence for extracts and their harvest
// inputs.
type ExtractRepository struct {
	db      *sqlx.DB
	harvest *HarvestRepository
}

// NewExtractRepository constructs a new repository.
func NewExtractRepository(db *sqlx.DB, harvest *HarvestRepository) *ExtractRepository {
	return &ExtractRepository{db: db, harvest: harvest}
}

const extractColumns = "id, control_number, type, output_grams, extracted_at, notes, created_by, created_at, updated_at"

// List returns extracts per provided filter. Inputs are not hydrated on list.
func (r *ExtractRepository) List(ctx context.Context, filter models.ExtractFilter) ([]models.Extract, int, error) {
	base := "FROM extracts"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.CreatedBy != "" {
		where = append(where, fmt.Sprintf("created_by = $%d", len(args)+1))
		args = append(args, filter.CreatedBy)
	}
	if filter.Type != nil {
		where = append(where, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, string(*filter.Type))
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("extracted_at >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("extracted_at <= $%d", len(args)+1))
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
%s WHERE %s ORDER BY extracted_at DESC, created_at DESC LIMIT %d OFFSET %d`, extractColumns, base, whereClause, size, offset)
	var extracts []models.Extract
	if err := r.db.SelectContext(ctx, &extracts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list extracts: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count extracts: %w", err)
	}
	return extracts, total, nil
}

// GetByID fetches one extract with its inputs hydrated.
func (r *ExtractRepository) GetByID(ctx context.Context, id string) (*models.Extract, error) {
	query := fmt.Sprintf("SELECT %s FROM extracts WHERE id = $1", extractColumns)
	var extract models.Extract
	if err := r.db.GetContext(ctx, &extract, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get extract: %w", err)
	}
	inputs, err := r.ListInputs(ctx, id)
	if err != nil {
		return nil, err
	}
	extract.Inputs = inputs
	return &extract, nil
}

// ListInputs returns the harvest draws backing an extract.
func (r *ExtractRepository) ListInputs(ctx context.Context, extractID string) ([]models.ExtractInput, error) {
	query := `SELECT id, extract_id, harvest_id, input_grams FROM extract_inputs WHERE extract_id = $1 ORDER BY harvest_id ASC`
	var inputs []models.ExtractInput
	if err := r.db.SelectContext(ctx, &inputs, query, extractID); err != nil {
		return nil, fmt.Errorf("list extract inputs: %w", err)
	}
	return inputs, nil
}

// Create inserts the extract, its input rows, and the extracted-grams ledger
// charges against every source harvest in one transaction. Any harvest whose
// ledger cannot absorb its draw aborts the whole extract.
func (r *ExtractRepository) Create(ctx context.Context, extract *models.Extract) error {
	if extract.ID == "" {
		extract.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if extract.CreatedAt.IsZero() {
		extract.CreatedAt = now
	}
	extract.UpdatedAt = now
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin extract: %w", err)
	}
	defer tx.Rollback()
	insertExtract := `INSERT INTO extracts (id, control_number, type, output_grams, extracted_at, notes, created_by, created_at, updated_at)
VALUES (:id, :control_number, :type, :output_grams, :extracted_at, :notes, :created_by, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertExtract, extract); err != nil {
		return fmt.Errorf("create extract: %w", err)
	}
	insertInput := `INSERT INTO extract_inputs (id, extract_id, harvest_id, input_grams)
VALUES ($1, $2, $3, $4)`
	for i := range extract.Inputs {
		input := &extract.Inputs[i]
		if input.ID == "" {
			input.ID = uuid.NewString()
		}
		input.ExtractID = extract.ID
		if _, err := tx.ExecContext(ctx, insertInput, input.ID, input.ExtractID, input.HarvestID, input.InputGrams); err != nil {
			return fmt.Errorf("create extract input: %w", err)
		}
		if err := r.harvest.ApplyLedgerDeltaTx(ctx, tx, models.LedgerDelta{HarvestID: input.HarvestID, ExtractedGrams: input.InputGrams}); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit extract: %w", err)
	}
	return nil
}

// Delete removes an extract and returns its input grams to the source
// harvests in the same transaction.
func (r *ExtractRepository) Delete(ctx context.Context, id string) error {
	inputs, err := r.ListInputs(ctx, id)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin extract delete: %w", err)
	}
	defer tx.Rollback()
	for _, input := range inputs {
		if err := r.harvest.ApplyLedgerDeltaTx(ctx, tx, models.LedgerDelta{HarvestID: input.HarvestID, ExtractedGrams: -input.InputGrams}); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM extract_inputs WHERE extract_id = $1", id); err != nil {
		return fmt.Errorf("delete extract inputs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM extracts WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete extract: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit extract delete: %w", err)
	}
	return nil
}
