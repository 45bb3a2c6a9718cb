package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
	"github.com/verdantiq/cultiva-api/pkg/refnum"
)

type fakeCounters struct {
	values map[string]int64
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{values: make(map[string]int64)}
}

func (f *fakeCounters) Next(ctx context.Context, scope string) (int64, error) {
	return f.NextN(ctx, scope, 1)
}

func (f *fakeCounters) NextN(ctx context.Context, scope string, n int64) (int64, error) {
	f.values[scope] += n
	return f.values[scope], nil
}

func (f *fakeCounters) Current(ctx context.Context, scope string) (int64, error) {
	return f.values[scope], nil
}

func fixedGenerator() *refnum.Generator {
	clock := func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	return refnum.NewGeneratorWith(clock, bytes.NewReader(bytes.Repeat([]byte{0}, 1024)))
}

func TestNextPlantNumberIsSequentialPerEnvironment(t *testing.T) {
	counters := newFakeCounters()
	svc := NewNumberingService(counters, fixedGenerator(), nil)

	first, seq1, err := svc.NextPlantNumber(context.Background(), "env-1")
	require.NoError(t, err)
	second, seq2, err := svc.NextPlantNumber(context.Background(), "env-1")
	require.NoError(t, err)
	other, seq3, err := svc.NextPlantNumber(context.Background(), "env-2")
	require.NoError(t, err)

	assert.Equal(t, int64(1), seq1)
	assert.Equal(t, int64(2), seq2)
	assert.Equal(t, int64(1), seq3, "environments count independently")
	assert.Equal(t, "AAAA20250314093000001", first)
	assert.Equal(t, "AAAA20250314093000002", second)
	assert.Equal(t, "AAAA20250314093000001", other)
}

func TestNextCloneNumbersReservesConsecutiveBlock(t *testing.T) {
	counters := newFakeCounters()
	counters.values["plants:env-1"] = 4
	svc := NewNumberingService(counters, fixedGenerator(), nil)

	numbers, err := svc.NextCloneNumbers(context.Background(), "env-1", 3)
	require.NoError(t, err)
	require.Len(t, numbers, 3)
	assert.Equal(t, "AAACL20250314093000005", numbers[0])
	assert.Equal(t, "AAACL20250314093000006", numbers[1])
	assert.Equal(t, "AAACL20250314093000007", numbers[2])
	assert.Equal(t, int64(7), counters.values["plants:env-1"])
}

func TestClonesShareThePlantCounter(t *testing.T) {
	counters := newFakeCounters()
	svc := NewNumberingService(counters, fixedGenerator(), nil)

	_, seq, err := svc.NextPlantNumber(context.Background(), "env-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), seq)

	numbers, err := svc.NextCloneNumbers(context.Background(), "env-1", 2)
	require.NoError(t, err)
	require.Len(t, numbers, 2)

	_, seq, err = svc.NextPlantNumber(context.Background(), "env-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), seq)
}

func TestNumberingOverflowSurfacesTypedError(t *testing.T) {
	counters := newFakeCounters()
	counters.values["plants:env-1"] = refnum.MaxSequence
	svc := NewNumberingService(counters, fixedGenerator(), nil)

	_, _, err := svc.NextPlantNumber(context.Background(), "env-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSequenceOverflow.Code, appErrors.FromError(err).Code)
}

func TestPreviewDoesNotReserve(t *testing.T) {
	counters := newFakeCounters()
	counters.values["plants:env-1"] = 7
	counters.values["harvests:env-1"] = 2
	svc := NewNumberingService(counters, fixedGenerator(), nil)

	preview, err := svc.Preview(context.Background(), "env-1")
	require.NoError(t, err)
	assert.Equal(t, int64(8), preview.NextPlantSeq)
	assert.Equal(t, int64(3), preview.NextHarvestSeq)
	assert.Equal(t, int64(7), counters.values["plants:env-1"], "preview must not consume values")
}
