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

// ActionLogRepository manages persistence for cultivation actions, both
// individual records and bulk summaries.
type ActionLogRepository struct {
	db *sqlx.DB
}

// NewActionLogRepository constructs a new repository.
func NewActionLogRepository(db *sqlx.DB) *ActionLogRepository {
	return &ActionLogRepository{db: db}
}

const actionLogColumns = "id, environment_id, plant_id, action, product, amount, notes, performed_at, performed_by, from_bulk, bulk_id, created_at"

// List returns action logs per provided filter.
func (r *ActionLogRepository) List(ctx context.Context, filter models.ActionLogFilter) ([]models.ActionLog, int, error) {
	base := "FROM action_logs"
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
	if filter.Action != nil {
		where = append(where, fmt.Sprintf("action = $%d", len(args)+1))
		args = append(args, string(*filter.Action))
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("performed_at >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("performed_at <= $%d", len(args)+1))
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
%s WHERE %s ORDER BY performed_at DESC, created_at DESC LIMIT %d OFFSET %d`, actionLogColumns, base, whereClause, size, offset)
	var logs []models.ActionLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list action logs: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count action logs: %w", err)
	}
	return logs, total, nil
}

// Create inserts one individual action log.
func (r *ActionLogRepository) Create(ctx context.Context, log *models.ActionLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO action_logs (id, environment_id, plant_id, action, product, amount, notes, performed_at, performed_by, from_bulk, bulk_id, created_at)
VALUES (:id, :environment_id, :plant_id, :action, :product, :amount, :notes, :performed_at, :performed_by, :from_bulk, :bulk_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create action log: %w", err)
	}
	return nil
}

// CreateBulkSummary inserts the summary record for a bulk action. The
// summary exists before any per-plant record so a crash mid fan-out still
// leaves an auditable trace of intent.
func (r *ActionLogRepository) CreateBulkSummary(ctx context.Context, bulk *models.BulkActionLog) error {
	if bulk.ID == "" {
		bulk.ID = uuid.NewString()
	}
	if bulk.CreatedAt.IsZero() {
		bulk.CreatedAt = time.Now().UTC()
	}
	bulk.TargetCount = len(bulk.TargetIDs)
	query := `INSERT INTO bulk_action_logs (id, environment_id, action, product, amount, notes, performed_at, performed_by, target_count, target_ids, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.db.ExecContext(ctx, query,
		bulk.ID, bulk.EnvironmentID, string(bulk.Action), bulk.Product, bulk.Amount, bulk.Notes,
		bulk.PerformedAt, bulk.PerformedBy, bulk.TargetCount, pq.Array(bulk.TargetIDs), bulk.CreatedAt); err != nil {
		return fmt.Errorf("create bulk action summary: %w", err)
	}
	return nil
}

// GetBulkByID fetches one bulk summary with its target list.
func (r *ActionLogRepository) GetBulkByID(ctx context.Context, id string) (*models.BulkActionLog, error) {
	query := `SELECT id, environment_id, action, product, amount, notes, performed_at, performed_by, target_count, target_ids, created_at
FROM bulk_action_logs WHERE id = $1`
	var bulk models.BulkActionLog
	var targets pq.StringArray
	row := r.db.QueryRowxContext(ctx, query, id)
	if err := row.Scan(&bulk.ID, &bulk.EnvironmentID, &bulk.Action, &bulk.Product, &bulk.Amount, &bulk.Notes,
		&bulk.PerformedAt, &bulk.PerformedBy, &bulk.TargetCount, &targets, &bulk.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bulk action summary: %w", err)
	}
	bulk.TargetIDs = []string(targets)
	return &bulk, nil
}

// ListBulk returns bulk summaries for an environment, newest first.
func (r *ActionLogRepository) ListBulk(ctx context.Context, environmentID string, page, pageSize int) ([]models.BulkActionLog, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT id, environment_id, action, product, amount, notes, performed_at, performed_by, target_count, target_ids, created_at
FROM bulk_action_logs WHERE environment_id = $1 ORDER BY performed_at DESC, created_at DESC LIMIT %d OFFSET %d`, pageSize, offset)
	rows, err := r.db.QueryxContext(ctx, query, environmentID)
	if err != nil {
		return nil, 0, fmt.Errorf("list bulk action summaries: %w", err)
	}
	defer rows.Close()
	var bulks []models.BulkActionLog
	for rows.Next() {
		var bulk models.BulkActionLog
		var targets pq.StringArray
		if err := rows.Scan(&bulk.ID, &bulk.EnvironmentID, &bulk.Action, &bulk.Product, &bulk.Amount, &bulk.Notes,
			&bulk.PerformedAt, &bulk.PerformedBy, &bulk.TargetCount, &targets, &bulk.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan bulk action summary: %w", err)
		}
		bulk.TargetIDs = []string(targets)
		bulks = append(bulks, bulk)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list bulk action summaries: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM bulk_action_logs WHERE environment_id = $1", environmentID); err != nil {
		return nil, 0, fmt.Errorf("count bulk action summaries: %w", err)
	}
	return bulks, total, nil
}

// DeleteByBulkID removes the per-plant records of a bulk action. The summary
// record is kept for audit.
func (r *ActionLogRepository) DeleteByBulkID(ctx context.Context, bulkID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM action_logs WHERE bulk_id = $1", bulkID)
	if err != nil {
		return 0, fmt.Errorf("delete bulk action records: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete bulk action records: %w", err)
	}
	return affected, nil
}
