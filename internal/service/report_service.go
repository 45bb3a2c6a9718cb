package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type reportReader interface {
	HarvestsInRange(ctx context.Context, rng models.ReportRange) ([]models.Harvest, error)
	DistributionsInRange(ctx context.Context, rng models.ReportRange) ([]models.Distribution, error)
	ExtractsInRange(ctx context.Context, rng models.ReportRange) ([]models.ExtractWithInput, error)
	PlantsInRange(ctx context.Context, rng models.ReportRange) ([]models.PlantWithStrain, error)
	StrainNames(ctx context.Context) (map[string]string, error)
	PatientNames(ctx context.Context) (map[string]string, error)
}

type reportCache interface {
	GetReport(ctx context.Context, key string, dest interface{}) error
	SetReport(ctx context.Context, key string, value interface{}) error
}

// ReportService folds the raw collections into aggregate reports. Date
// bounds are inclusive on both ends; an open bound covers everything on that
// side.
type ReportService struct {
	repo   reportReader
	cache  reportCache
	now    func() time.Time
	logger *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(repo reportReader, cache reportCache, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, cache: cache, now: time.Now, logger: logger}
}

// Harvests aggregates harvests over the range.
func (s *ReportService) Harvests(ctx context.Context, rng models.ReportRange) (*models.HarvestReport, error) {
	key := cacheKey("harvests", rng)
	var cached models.HarvestReport
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}
	harvests, err := s.repo.HarvestsInRange(ctx, rng)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read harvests")
	}
	names, err := s.repo.StrainNames(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve strain names")
	}
	report := &models.HarvestReport{GeneratedAt: s.now().UTC(), Range: rng}
	byStrain := make(map[string]*models.GroupTotal)
	for _, h := range harvests {
		report.TotalCount++
		report.TotalWetGrams += h.WetWeightGrams
		report.TotalDryGrams += h.DryWeightGrams
		report.TotalDistributedGrams += h.DistributedGrams
		report.TotalExtractedGrams += h.ExtractedGrams
		bump(byStrain, groupName(names, h.StrainID), h.DryWeightGrams)
	}
	report.ByStrain = sortedTotals(byStrain)
	s.cacheSet(ctx, key, report)
	return report, nil
}

// Distributions aggregates distributions over the range.
func (s *ReportService) Distributions(ctx context.Context, rng models.ReportRange) (*models.DistributionReport, error) {
	key := cacheKey("distributions", rng)
	var cached models.DistributionReport
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}
	distributions, err := s.repo.DistributionsInRange(ctx, rng)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read distributions")
	}
	names, err := s.repo.PatientNames(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve patient names")
	}
	report := &models.DistributionReport{GeneratedAt: s.now().UTC(), Range: rng}
	byPatient := make(map[string]*models.GroupTotal)
	for _, d := range distributions {
		report.TotalCount++
		report.TotalGrams += d.Grams
		bump(byPatient, groupName(names, d.PatientID), d.Grams)
	}
	report.ByPatient = sortedTotals(byPatient)
	s.cacheSet(ctx, key, report)
	return report, nil
}

// Extracts aggregates extracts over the range.
func (s *ReportService) Extracts(ctx context.Context, rng models.ReportRange) (*models.ExtractReport, error) {
	key := cacheKey("extracts", rng)
	var cached models.ExtractReport
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}
	extracts, err := s.repo.ExtractsInRange(ctx, rng)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read extracts")
	}
	report := &models.ExtractReport{GeneratedAt: s.now().UTC(), Range: rng}
	byType := make(map[string]*models.GroupTotal)
	for _, e := range extracts {
		report.TotalCount++
		report.TotalOutputGrams += e.OutputGrams
		report.TotalInputGrams += e.InputGrams
		bump(byType, string(e.Type), e.OutputGrams)
	}
	report.ByType = sortedTotals(byType)
	s.cacheSet(ctx, key, report)
	return report, nil
}

// Plants aggregates the plant inventory over the planting-date range.
func (s *ReportService) Plants(ctx context.Context, rng models.ReportRange) (*models.PlantReport, error) {
	key := cacheKey("plants", rng)
	var cached models.PlantReport
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}
	plants, err := s.repo.PlantsInRange(ctx, rng)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read plants")
	}
	report := &models.PlantReport{GeneratedAt: s.now().UTC(), Range: rng}
	byStage := make(map[string]*models.GroupTotal)
	byStrain := make(map[string]*models.GroupTotal)
	for _, p := range plants {
		report.TotalCount++
		bump(byStage, string(p.Stage), 0)
		bump(byStrain, p.StrainName, 0)
	}
	report.ByStage = sortedTotals(byStage)
	report.ByStrain = sortedTotals(byStrain)
	s.cacheSet(ctx, key, report)
	return report, nil
}

// Generate dispatches by report type and returns the aggregate payload.
func (s *ReportService) Generate(ctx context.Context, reportType models.ReportType, rng models.ReportRange) (interface{}, error) {
	switch reportType {
	case models.ReportHarvests:
		return s.Harvests(ctx, rng)
	case models.ReportDistributions:
		return s.Distributions(ctx, rng)
	case models.ReportExtracts:
		return s.Extracts(ctx, rng)
	case models.ReportPlants:
		return s.Plants(ctx, rng)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report type %q", reportType))
	}
}

func (s *ReportService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.GetReport(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *ReportService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetReport(ctx, key, value); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheKey(reportType string, rng models.ReportRange) string {
	from, to := "open", "open"
	if rng.From != nil {
		from = rng.From.UTC().Format("20060102")
	}
	if rng.To != nil {
		to = rng.To.UTC().Format("20060102")
	}
	return fmt.Sprintf("%s:%s:%s", reportType, from, to)
}

func bump(groups map[string]*models.GroupTotal, key string, grams float64) {
	total, ok := groups[key]
	if !ok {
		total = &models.GroupTotal{Key: key}
		groups[key] = total
	}
	total.Count++
	total.Grams += grams
}

func groupName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

func sortedTotals(groups map[string]*models.GroupTotal) []models.GroupTotal {
	totals := make([]models.GroupTotal, 0, len(groups))
	for _, total := range groups {
		totals = append(totals, *total)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Key < totals[j].Key })
	return totals
}
