package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/verdantiq/cultiva-api/internal/models"
	"github.com/verdantiq/cultiva-api/internal/repository"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
	"github.com/verdantiq/cultiva-api/pkg/export"
	"github.com/verdantiq/cultiva-api/pkg/jobs"
)

type reportJobStore interface {
	CreateJob(ctx context.Context, job *models.ReportJob) error
	GetJob(ctx context.Context, id string) (*models.ReportJob, error)
	UpdateJob(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListFinishedJobsBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
}

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type urlSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
}

type exportMetrics interface {
	RecordExportFinished()
}

// ExportService renders report aggregates into downloadable files. Rendering
// happens on a background queue; the job row tracks progress and the result
// is served through a signed URL.
type ExportService struct {
	jobsRepo reportJobStore
	reports  *ReportService
	storage  exportStorage
	signer   urlSigner
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	queue    *jobs.Queue
	fileTTL  time.Duration
	metrics  exportMetrics
	logger   *zap.Logger
}

// NewExportService constructs the service. Call StartWorkers before
// enqueueing.
func NewExportService(jobsRepo reportJobStore, reports *ReportService, storage exportStorage, signer urlSigner, queueCfg jobs.QueueConfig, fileTTL time.Duration, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fileTTL <= 0 {
		fileTTL = 24 * time.Hour
	}
	s := &ExportService{
		jobsRepo: jobsRepo,
		reports:  reports,
		storage:  storage,
		signer:   signer,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		fileTTL:  fileTTL,
		logger:   logger,
	}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("report-exports", s.process, queueCfg)
	return s
}

// AttachMetrics wires the metrics recorder for finished jobs.
func (s *ExportService) AttachMetrics(m exportMetrics) {
	s.metrics = m
}

// StartWorkers begins background processing.
func (s *ExportService) StartWorkers(ctx context.Context) {
	s.queue.Start(ctx)
}

// StopWorkers drains the queue workers.
func (s *ExportService) StopWorkers() {
	s.queue.Stop()
}

// ExportRequest describes an export submission.
type ExportRequest struct {
	Type      models.ReportType
	Format    models.ReportFormat
	Range     models.ReportRange
	CreatedBy string
}

// Enqueue creates a job row and schedules rendering.
func (s *ExportService) Enqueue(ctx context.Context, req ExportRequest) (*models.ReportJob, error) {
	switch req.Type {
	case models.ReportHarvests, models.ReportDistributions, models.ReportExtracts, models.ReportPlants:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report type %q", req.Type))
	}
	if req.Format != models.ReportFormatCSV && req.Format != models.ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export format %q", req.Format))
	}
	job := &models.ReportJob{
		Type:      req.Type,
		Format:    req.Format,
		DateFrom:  req.Range.From,
		DateTo:    req.Range.To,
		Status:    models.ReportStatusQueued,
		CreatedBy: req.CreatedBy,
	}
	if err := s.jobsRepo.CreateJob(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(req.Type), Payload: job.ID}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return job, nil
}

// GetJob returns the current job state.
func (s *ExportService) GetJob(ctx context.Context, id string) (*models.ReportJob, error) {
	job, err := s.jobsRepo.GetJob(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get export job")
	}
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// ResolveDownload validates a signed token and opens the exported file.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	return file, relPath, nil
}

// CleanupExpired removes stale files and is meant to run on a ticker.
func (s *ExportService) CleanupExpired(ctx context.Context) {
	deleted, err := s.storage.CleanupOlderThan(s.fileTTL)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("export cleanup removed files", zap.Int("count", len(deleted)))
	}
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	jobID, _ := job.Payload.(string)
	if jobID == "" {
		jobID = job.ID
	}
	row, err := s.jobsRepo.GetJob(ctx, jobID)
	if err != nil || row == nil {
		return fmt.Errorf("load export job %s: %w", jobID, err)
	}
	running := models.ReportStatusRunning
	progress := 10
	if err := s.jobsRepo.UpdateJob(ctx, jobID, repository.UpdateReportJobParams{Status: &running, Progress: &progress}); err != nil {
		return err
	}

	rng := models.ReportRange{From: row.DateFrom, To: row.DateTo}
	payload, err := s.reports.Generate(ctx, row.Type, rng)
	if err != nil {
		return s.fail(ctx, jobID, err)
	}
	dataset, title := buildDataset(row.Type, payload)

	var rendered []byte
	switch row.Format {
	case models.ReportFormatPDF:
		rendered, err = s.pdf.Render(dataset, title)
	default:
		rendered, err = s.csv.Render(dataset)
	}
	if err != nil {
		return s.fail(ctx, jobID, err)
	}

	filename := fmt.Sprintf("%s/%s.%s", row.Type, jobID, row.Format)
	relPath, err := s.storage.Save(filename, rendered)
	if err != nil {
		return s.fail(ctx, jobID, err)
	}
	token, _, err := s.signer.Generate(jobID, relPath)
	if err != nil {
		return s.fail(ctx, jobID, err)
	}

	done := models.ReportStatusDone
	full := 100
	resultURL := "/api/v1/reports/download?token=" + token
	now := time.Now().UTC()
	if err := s.jobsRepo.UpdateJob(ctx, jobID, repository.UpdateReportJobParams{
		Status: &done, Progress: &full, ResultURL: &resultURL, FinishedAt: &now,
	}); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordExportFinished()
	}
	s.logger.Info("export job finished", zap.String("job_id", jobID), zap.String("type", string(row.Type)))
	return nil
}

func (s *ExportService) fail(ctx context.Context, jobID string, cause error) error {
	failed := models.ReportStatusFailed
	message := cause.Error()
	now := time.Now().UTC()
	if err := s.jobsRepo.UpdateJob(ctx, jobID, repository.UpdateReportJobParams{
		Status: &failed, ErrorMessage: &message, FinishedAt: &now,
	}); err != nil {
		s.logger.Error("failed to mark export job failed", zap.String("job_id", jobID), zap.Error(err))
	}
	return cause
}

func buildDataset(reportType models.ReportType, payload interface{}) (export.Dataset, string) {
	switch report := payload.(type) {
	case *models.HarvestReport:
		dataset := export.Dataset{
			Headers: []string{"strain", "count", "dry_grams"},
			Summary: []export.SummaryLine{
				{Label: "Total harvests", Value: strconv.Itoa(report.TotalCount)},
				{Label: "Total wet grams", Value: formatGrams(report.TotalWetGrams)},
				{Label: "Total dry grams", Value: formatGrams(report.TotalDryGrams)},
				{Label: "Total distributed grams", Value: formatGrams(report.TotalDistributedGrams)},
				{Label: "Total extracted grams", Value: formatGrams(report.TotalExtractedGrams)},
			},
		}
		for _, group := range report.ByStrain {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"strain": group.Key, "count": strconv.Itoa(group.Count), "dry_grams": formatGrams(group.Grams),
			})
		}
		return dataset, "Harvest report"
	case *models.DistributionReport:
		dataset := export.Dataset{
			Headers: []string{"patient", "count", "grams"},
			Summary: []export.SummaryLine{
				{Label: "Total distributions", Value: strconv.Itoa(report.TotalCount)},
				{Label: "Total grams", Value: formatGrams(report.TotalGrams)},
			},
		}
		for _, group := range report.ByPatient {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"patient": group.Key, "count": strconv.Itoa(group.Count), "grams": formatGrams(group.Grams),
			})
		}
		return dataset, "Distribution report"
	case *models.ExtractReport:
		dataset := export.Dataset{
			Headers: []string{"type", "count", "output_grams"},
			Summary: []export.SummaryLine{
				{Label: "Total extracts", Value: strconv.Itoa(report.TotalCount)},
				{Label: "Total output grams", Value: formatGrams(report.TotalOutputGrams)},
				{Label: "Total input grams", Value: formatGrams(report.TotalInputGrams)},
			},
		}
		for _, group := range report.ByType {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"type": group.Key, "count": strconv.Itoa(group.Count), "output_grams": formatGrams(group.Grams),
			})
		}
		return dataset, "Extract report"
	case *models.PlantReport:
		dataset := export.Dataset{
			Headers: []string{"group", "key", "count"},
			Summary: []export.SummaryLine{
				{Label: "Total plants", Value: strconv.Itoa(report.TotalCount)},
			},
		}
		for _, group := range report.ByStage {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"group": "stage", "key": group.Key, "count": strconv.Itoa(group.Count),
			})
		}
		for _, group := range report.ByStrain {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"group": "strain", "key": group.Key, "count": strconv.Itoa(group.Count),
			})
		}
		return dataset, "Plant report"
	}
	return export.Dataset{Headers: []string{"value"}}, string(reportType)
}

func formatGrams(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
