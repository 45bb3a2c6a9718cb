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

// ReportRepository persists export job metadata and serves the flat
// collection reads backing report aggregation. Aggregation itself happens in
// the service layer over these rows.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func rangeClause(column string, rng models.ReportRange, args *[]interface{}) string {
	where := []string{"1=1"}
	if rng.From != nil {
		*args = append(*args, *rng.From)
		where = append(where, fmt.Sprintf("%s >= $%d", column, len(*args)))
	}
	if rng.To != nil {
		*args = append(*args, *rng.To)
		where = append(where, fmt.Sprintf("%s <= $%d", column, len(*args)))
	}
	return strings.Join(where, " AND ")
}

// HarvestsInRange returns all harvests whose harvest date falls inside the
// inclusive range.
func (r *ReportRepository) HarvestsInRange(ctx context.Context, rng models.ReportRange) ([]models.Harvest, error) {
	args := []interface{}{}
	query := fmt.Sprintf(`SELECT %s FROM harvests WHERE %s ORDER BY harvested_at ASC`, harvestColumns, rangeClause("harvested_at", rng, &args))
	var harvests []models.Harvest
	if err := r.db.SelectContext(ctx, &harvests, query, args...); err != nil {
		return nil, fmt.Errorf("report harvests: %w", err)
	}
	return harvests, nil
}

// DistributionsInRange returns all distributions inside the inclusive range.
func (r *ReportRepository) DistributionsInRange(ctx context.Context, rng models.ReportRange) ([]models.Distribution, error) {
	args := []interface{}{}
	query := fmt.Sprintf(`SELECT %s FROM distributions WHERE %s ORDER BY distributed_at ASC`, distributionColumns, rangeClause("distributed_at", rng, &args))
	var distributions []models.Distribution
	if err := r.db.SelectContext(ctx, &distributions, query, args...); err != nil {
		return nil, fmt.Errorf("report distributions: %w", err)
	}
	return distributions, nil
}

// ExtractsInRange returns all extracts inside the inclusive range with their
// summed input grams precomputed in SQL.
func (r *ReportRepository) ExtractsInRange(ctx context.Context, rng models.ReportRange) ([]models.ExtractWithInput, error) {
	args := []interface{}{}
	query := fmt.Sprintf(`SELECT e.id, e.control_number, e.type, e.output_grams, e.extracted_at, e.created_by,
       COALESCE(SUM(i.input_grams),0) AS input_grams
FROM extracts e
LEFT JOIN extract_inputs i ON i.extract_id = e.id
WHERE %s
GROUP BY e.id, e.control_number, e.type, e.output_grams, e.extracted_at, e.created_by
ORDER BY e.extracted_at ASC`, rangeClause("e.extracted_at", rng, &args))
	var extracts []models.ExtractWithInput
	if err := r.db.SelectContext(ctx, &extracts, query, args...); err != nil {
		return nil, fmt.Errorf("report extracts: %w", err)
	}
	return extracts, nil
}

// PlantsInRange returns all plants whose planting date falls inside the
// inclusive range, joined to their strain names.
func (r *ReportRepository) PlantsInRange(ctx context.Context, rng models.ReportRange) ([]models.PlantWithStrain, error) {
	args := []interface{}{}
	query := fmt.Sprintf(`SELECT p.id, p.control_number, p.environment_id, p.strain_id, p.stage, p.planted_at,
       COALESCE(s.name, p.strain_id) AS strain_name
FROM plants p
LEFT JOIN strains s ON s.id = p.strain_id
WHERE %s
ORDER BY p.planted_at ASC`, rangeClause("p.planted_at", rng, &args))
	var plants []models.PlantWithStrain
	if err := r.db.SelectContext(ctx, &plants, query, args...); err != nil {
		return nil, fmt.Errorf("report plants: %w", err)
	}
	return plants, nil
}

// StrainNames resolves strain ids to display names.
func (r *ReportRepository) StrainNames(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT id, name FROM strains")
	if err != nil {
		return nil, fmt.Errorf("strain names: %w", err)
	}
	defer rows.Close()
	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan strain name: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("strain names: %w", err)
	}
	return names, nil
}

// PatientNames resolves patient ids to display names.
func (r *ReportRepository) PatientNames(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT id, full_name FROM patients")
	if err != nil {
		return nil, fmt.Errorf("patient names: %w", err)
	}
	defer rows.Close()
	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan patient name: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patient names: %w", err)
	}
	return names, nil
}

// CreateJob inserts a new export job row with generated defaults.
func (r *ReportRepository) CreateJob(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO report_jobs (id, type, format, date_from, date_to, status, progress, result_url, error_message, created_by, created_at, finished_at)
VALUES (:id, :type, :format, :date_from, :date_to, :status, :progress, :result_url, :error_message, :created_by, :created_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

const reportJobColumns = "id, type, format, date_from, date_to, status, progress, result_url, error_message, created_by, created_at, finished_at"

// GetJob returns a job row by its identifier.
func (r *ReportRepository) GetJob(ctx context.Context, id string) (*models.ReportJob, error) {
	query := fmt.Sprintf("SELECT %s FROM report_jobs WHERE id = $1", reportJobColumns)
	var job models.ReportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get report job: %w", err)
	}
	return &job, nil
}

// UpdateReportJobParams defines the mutable fields of a job row.
type UpdateReportJobParams struct {
	Status       *models.ReportStatus
	Progress     *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// UpdateJob persists the provided changes for a job row.
func (r *ReportRepository) UpdateJob(ctx context.Context, id string, params UpdateReportJobParams) error {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	argPos := 1

	if params.Status != nil {
		set = append(set, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *params.Status)
		argPos++
	}
	if params.Progress != nil {
		set = append(set, fmt.Sprintf("progress = $%d", argPos))
		args = append(args, *params.Progress)
		argPos++
	}
	if params.ResultURL != nil {
		set = append(set, fmt.Sprintf("result_url = $%d", argPos))
		args = append(args, *params.ResultURL)
		argPos++
	}
	if params.ErrorMessage != nil {
		set = append(set, fmt.Sprintf("error_message = $%d", argPos))
		args = append(args, *params.ErrorMessage)
		argPos++
	}
	if params.FinishedAt != nil {
		set = append(set, fmt.Sprintf("finished_at = $%d", argPos))
		args = append(args, *params.FinishedAt)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE report_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update report job: %w", err)
	}
	return nil
}

// ListFinishedJobsBefore retrieves completed jobs prior to cutoff for cleanup.
func (r *ReportRepository) ListFinishedJobsBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM report_jobs
WHERE status = 'done' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2`, reportJobColumns)
	var jobs []models.ReportJob
	if err := r.db.SelectContext(ctx, &jobs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished report jobs: %w", err)
	}
	return jobs, nil
}
