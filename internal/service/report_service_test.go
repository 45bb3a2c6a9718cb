package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type mockReportReader struct {
	harvests      []models.Harvest
	distributions []models.Distribution
	extracts      []models.ExtractWithInput
	plants        []models.PlantWithStrain
	lastRange     models.ReportRange
	reads         int
}

func (m *mockReportReader) HarvestsInRange(ctx context.Context, rng models.ReportRange) ([]models.Harvest, error) {
	m.lastRange = rng
	m.reads++
	return m.harvests, nil
}

func (m *mockReportReader) DistributionsInRange(ctx context.Context, rng models.ReportRange) ([]models.Distribution, error) {
	m.lastRange = rng
	m.reads++
	return m.distributions, nil
}

func (m *mockReportReader) ExtractsInRange(ctx context.Context, rng models.ReportRange) ([]models.ExtractWithInput, error) {
	m.lastRange = rng
	m.reads++
	return m.extracts, nil
}

func (m *mockReportReader) PlantsInRange(ctx context.Context, rng models.ReportRange) ([]models.PlantWithStrain, error) {
	m.lastRange = rng
	m.reads++
	return m.plants, nil
}

func (m *mockReportReader) StrainNames(ctx context.Context) (map[string]string, error) {
	return map[string]string{"strain-1": "Northern Lights", "strain-2": "Amnesia"}, nil
}

func (m *mockReportReader) PatientNames(ctx context.Context) (map[string]string, error) {
	return map[string]string{"patient-1": "P. One", "patient-2": "P. Two"}, nil
}

type memoryReportCache struct {
	store map[string][]byte
}

func (m *memoryReportCache) GetReport(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (m *memoryReportCache) SetReport(ctx context.Context, key string, value interface{}) error {
	return nil
}

func reportFixture() *mockReportReader {
	return &mockReportReader{
		harvests: []models.Harvest{
			{StrainID: "strain-1", WetWeightGrams: 1000, DryWeightGrams: 250, DistributedGrams: 50, ExtractedGrams: 25},
			{StrainID: "strain-1", WetWeightGrams: 800, DryWeightGrams: 200},
			{StrainID: "strain-2", WetWeightGrams: 500, DryWeightGrams: 120, DistributedGrams: 20},
		},
		distributions: []models.Distribution{
			{PatientID: "patient-1", Grams: 10},
			{PatientID: "patient-1", Grams: 15},
			{PatientID: "patient-2", Grams: 5},
		},
		extracts: []models.ExtractWithInput{
			{Type: models.ExtractOil, OutputGrams: 12, InputGrams: 60},
			{Type: models.ExtractOil, OutputGrams: 8, InputGrams: 40},
			{Type: models.ExtractTincture, OutputGrams: 5, InputGrams: 30},
		},
		plants: []models.PlantWithStrain{
			{Stage: models.StageFlowering, StrainName: "Northern Lights"},
			{Stage: models.StageFlowering, StrainName: "Amnesia"},
			{Stage: models.StageSeedling, StrainName: "Amnesia"},
		},
	}
}

func TestHarvestReportTotalsAndGroups(t *testing.T) {
	reader := reportFixture()
	svc := NewReportService(reader, nil, nil)

	report, err := svc.Harvests(context.Background(), models.ReportRange{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalCount)
	assert.InDelta(t, 2300, report.TotalWetGrams, 0.001)
	assert.InDelta(t, 570, report.TotalDryGrams, 0.001)
	assert.InDelta(t, 70, report.TotalDistributedGrams, 0.001)
	assert.InDelta(t, 25, report.TotalExtractedGrams, 0.001)
	assert.False(t, report.GeneratedAt.IsZero())

	require.Len(t, report.ByStrain, 2)
	assert.Equal(t, "Amnesia", report.ByStrain[0].Key)
	assert.Equal(t, 1, report.ByStrain[0].Count)
	assert.Equal(t, "Northern Lights", report.ByStrain[1].Key)
	assert.Equal(t, 2, report.ByStrain[1].Count)
	assert.InDelta(t, 450, report.ByStrain[1].Grams, 0.001)
}

func TestHarvestReportIsDeterministic(t *testing.T) {
	reader := reportFixture()
	svc := NewReportService(reader, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	first, err := svc.Harvests(context.Background(), models.ReportRange{})
	require.NoError(t, err)
	second, err := svc.Harvests(context.Background(), models.ReportRange{})
	require.NoError(t, err)
	assert.Equal(t, first, second, "same inputs must fold to the same report")
}

func TestDistributionReportGroupsByPatient(t *testing.T) {
	reader := reportFixture()
	svc := NewReportService(reader, nil, nil)

	report, err := svc.Distributions(context.Background(), models.ReportRange{})
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalCount)
	assert.InDelta(t, 30, report.TotalGrams, 0.001)
	require.Len(t, report.ByPatient, 2)
	assert.Equal(t, "P. One", report.ByPatient[0].Key)
	assert.InDelta(t, 25, report.ByPatient[0].Grams, 0.001)
}

func TestExtractReportTracksInputAndOutput(t *testing.T) {
	reader := reportFixture()
	svc := NewReportService(reader, nil, nil)

	report, err := svc.Extracts(context.Background(), models.ReportRange{})
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalCount)
	assert.InDelta(t, 25, report.TotalOutputGrams, 0.001)
	assert.InDelta(t, 130, report.TotalInputGrams, 0.001)
	require.Len(t, report.ByType, 2)
	assert.Equal(t, "oil", report.ByType[0].Key)
	assert.Equal(t, 2, report.ByType[0].Count)
}

func TestPlantReportGroupsByStageAndStrain(t *testing.T) {
	reader := reportFixture()
	svc := NewReportService(reader, nil, nil)

	report, err := svc.Plants(context.Background(), models.ReportRange{})
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalCount)
	require.Len(t, report.ByStage, 2)
	assert.Equal(t, "flowering", report.ByStage[0].Key)
	assert.Equal(t, 2, report.ByStage[0].Count)
	require.Len(t, report.ByStrain, 2)
	assert.Equal(t, "Amnesia", report.ByStrain[0].Key)
	assert.Equal(t, 2, report.ByStrain[0].Count)
}

func TestReportRangePassesThroughUnchanged(t *testing.T) {
	reader := reportFixture()
	svc := NewReportService(reader, nil, nil)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
	_, err := svc.Harvests(context.Background(), models.ReportRange{From: &from, To: &to})
	require.NoError(t, err)
	require.NotNil(t, reader.lastRange.From)
	require.NotNil(t, reader.lastRange.To)
	assert.Equal(t, from, *reader.lastRange.From)
	assert.Equal(t, to, *reader.lastRange.To)
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	svc := NewReportService(reportFixture(), nil, nil)
	_, err := svc.Generate(context.Background(), models.ReportType("bogus"), models.ReportRange{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportCacheMissFallsThroughToRepo(t *testing.T) {
	reader := reportFixture()
	svc := NewReportService(reader, &memoryReportCache{}, nil)

	_, err := svc.Harvests(context.Background(), models.ReportRange{})
	require.NoError(t, err)
	assert.Equal(t, 1, reader.reads)
}
