package refnum

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedGenerator() *Generator {
	clock := func() time.Time {
		return time.Date(2025, 12, 2, 14, 35, 0, 0, time.UTC)
	}
	// 23, 24, 25 map to X, Y, Z.
	return NewGeneratorWith(clock, bytes.NewReader([]byte{23, 24, 25}))
}

func TestFormatPlantExample(t *testing.T) {
	g := fixedGenerator()
	got, err := g.Format(TagPlant, 1)
	require.NoError(t, err)
	assert.Equal(t, "XYZA20251202143500001", got)
}

func TestFormatPaddingBoundaries(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 1, 31, 9, 5, 0, 0, time.UTC) }

	g := NewGeneratorWith(clock, bytes.NewReader([]byte{0, 0, 0}))
	one, err := g.Format(TagHarvest, 1)
	require.NoError(t, err)
	assert.Equal(t, "AAAH20260131090500001", one)

	g = NewGeneratorWith(clock, bytes.NewReader([]byte{0, 0, 0}))
	max, err := g.Format(TagHarvest, MaxSequence)
	require.NoError(t, err)
	assert.Equal(t, "AAAH20260131090599999", max)
}

func TestFormatRejectsOverflowAndNonPositive(t *testing.T) {
	g := fixedGenerator()
	_, err := g.Format(TagOrder, MaxSequence+1)
	assert.Error(t, err)

	g = fixedGenerator()
	_, err = g.Format(TagOrder, 0)
	assert.Error(t, err)

	g = fixedGenerator()
	_, err = g.Format(TagOrder, -5)
	assert.Error(t, err)
}

func TestFormatRejectsUnknownTag(t *testing.T) {
	g := fixedGenerator()
	_, err := g.Format(Tag("ZZ"), 1)
	assert.Error(t, err)
}

func TestParseFormatRoundTrip(t *testing.T) {
	tags := []Tag{TagPlant, TagClone, TagHarvest, TagExtract, TagDistribution, TagOrder}
	sequences := []int64{1, 2, 7, 42, 500, 12345, 99998, MaxSequence}
	clock := func() time.Time { return time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC) }

	for _, tag := range tags {
		for _, seq := range sequences {
			g := NewGeneratorWith(clock, bytes.NewReader([]byte{11, 3, 19}))
			formatted, err := g.Format(tag, seq)
			require.NoError(t, err, "tag %s seq %d", tag, seq)

			parsed := Parse(formatted)
			require.NotNil(t, parsed, "tag %s seq %d should parse", tag, seq)
			assert.Equal(t, tag, parsed.Tag)
			assert.Equal(t, seq, parsed.Sequence)
			assert.Equal(t, clock().Truncate(time.Minute), parsed.Timestamp)
		}
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"short",
		"xyzA20251202143500001",  // lowercase prefix
		"XYZQ20251202143500001",  // unknown tag
		"XYZA2025120214350001",   // truncated sequence
		"XYZA20251302143500001",  // month 13
		"XYZA202512021435abcde",  // non-numeric sequence
		"XYZA2025120214350000123", // too long
	}
	for _, raw := range cases {
		assert.Nil(t, Parse(raw), "input %q", raw)
	}
}

func TestParseTagDisambiguation(t *testing.T) {
	// Same prefix, timestamp and sequence across all tags must still parse
	// back to the tag that produced them.
	clock := func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	for _, tag := range []Tag{TagDistribution, TagOrder, TagExtract, TagClone, TagPlant, TagHarvest} {
		g := NewGeneratorWith(clock, bytes.NewReader([]byte{0, 1, 2}))
		formatted, err := g.Format(tag, 77)
		require.NoError(t, err)
		parsed := Parse(formatted)
		require.NotNil(t, parsed)
		assert.Equal(t, tag, parsed.Tag, "formatted %s", formatted)
	}
}

func TestGeneratorRandomSourceFallback(t *testing.T) {
	// An exhausted random source must not prevent formatting.
	clock := func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	g := NewGeneratorWith(clock, bytes.NewReader(nil))
	formatted, err := g.Format(TagPlant, 9)
	require.NoError(t, err)
	require.NotNil(t, Parse(formatted))
}
