package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
	"github.com/verdantiq/cultiva-api/pkg/refnum"
)

type sequenceCounters interface {
	Next(ctx context.Context, scope string) (int64, error)
	NextN(ctx context.Context, scope string, n int64) (int64, error)
	Current(ctx context.Context, scope string) (int64, error)
}

// NumberingService reserves counter values and renders them as control
// numbers. It is the single writer against the sequence counters; entity
// services never touch scopes directly.
type NumberingService struct {
	counters sequenceCounters
	gen      *refnum.Generator
	logger   *zap.Logger
}

// NewNumberingService constructs the service.
func NewNumberingService(counters sequenceCounters, gen *refnum.Generator, logger *zap.Logger) *NumberingService {
	if gen == nil {
		gen = refnum.NewGenerator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NumberingService{counters: counters, gen: gen, logger: logger}
}

// NextPlantNumber reserves the next plant number inside an environment.
func (s *NumberingService) NextPlantNumber(ctx context.Context, environmentID string) (string, int64, error) {
	return s.next(ctx, models.PlantCounterScope(environmentID), refnum.TagPlant)
}

// NextCloneNumbers reserves count consecutive clone numbers inside an
// environment. Clones share the plant counter with individually created
// plants so numbers inside an environment stay strictly ordered.
func (s *NumberingService) NextCloneNumbers(ctx context.Context, environmentID string, count int) ([]string, error) {
	if count < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "clone count must be at least 1")
	}
	scope := models.PlantCounterScope(environmentID)
	last, err := s.counters.NextN(ctx, scope, int64(count))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reserve clone numbers")
	}
	numbers := make([]string, 0, count)
	for seq := last - int64(count) + 1; seq <= last; seq++ {
		number, err := s.gen.Format(refnum.TagClone, seq)
		if err != nil {
			return nil, s.formatError(err, scope, seq)
		}
		numbers = append(numbers, number)
	}
	return numbers, nil
}

// NextHarvestNumber reserves the next harvest number inside an environment.
func (s *NumberingService) NextHarvestNumber(ctx context.Context, environmentID string) (string, int64, error) {
	return s.next(ctx, models.HarvestCounterScope(environmentID), refnum.TagHarvest)
}

// NextExtractNumber reserves the next extract number for a user.
func (s *NumberingService) NextExtractNumber(ctx context.Context, userID string) (string, int64, error) {
	return s.next(ctx, models.ExtractCounterScope(userID), refnum.TagExtract)
}

// NextDistributionNumber reserves the next distribution number for a user.
func (s *NumberingService) NextDistributionNumber(ctx context.Context, userID string) (string, int64, error) {
	return s.next(ctx, models.DistributionCounterScope(userID), refnum.TagDistribution)
}

// NextOrderNumber reserves the next order number for a user.
func (s *NumberingService) NextOrderNumber(ctx context.Context, userID string) (string, int64, error) {
	return s.next(ctx, models.OrderCounterScope(userID), refnum.TagOrder)
}

// Preview returns the values the next plant and harvest creations in an
// environment would receive. Nothing is reserved; a concurrent creation can
// invalidate the preview immediately.
func (s *NumberingService) Preview(ctx context.Context, environmentID string) (*models.NextNumbersPreview, error) {
	plantCur, err := s.counters.Current(ctx, models.PlantCounterScope(environmentID))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read plant counter")
	}
	harvestCur, err := s.counters.Current(ctx, models.HarvestCounterScope(environmentID))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read harvest counter")
	}
	return &models.NextNumbersPreview{
		EnvironmentID:  environmentID,
		NextPlantSeq:   plantCur + 1,
		NextHarvestSeq: harvestCur + 1,
	}, nil
}

func (s *NumberingService) next(ctx context.Context, scope string, tag refnum.Tag) (string, int64, error) {
	seq, err := s.counters.Next(ctx, scope)
	if err != nil {
		return "", 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reserve sequence value")
	}
	number, err := s.gen.Format(tag, seq)
	if err != nil {
		return "", 0, s.formatError(err, scope, seq)
	}
	return number, seq, nil
}

func (s *NumberingService) formatError(err error, scope string, seq int64) error {
	if errors.Is(err, refnum.ErrOverflow) {
		s.logger.Error("sequence counter overflow", zap.String("scope", scope), zap.Int64("sequence", seq))
		return appErrors.ErrSequenceOverflow
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to format control number")
}
