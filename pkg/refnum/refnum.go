package refnum

import (
	cryptorand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Tag identifies the entity type embedded in a control number.
type Tag string

const (
	TagPlant        Tag = "A"
	TagClone        Tag = "CL"
	TagHarvest      Tag = "H"
	TagExtract      Tag = "EX"
	TagDistribution Tag = "D"
	TagOrder        Tag = "O"
)

// MaxSequence is the largest value representable in the fixed 5-digit field.
const MaxSequence = 99999

// ErrOverflow is returned when a sequence no longer fits the fixed field.
var ErrOverflow = errors.New("sequence overflows control number field")

const (
	prefixLen    = 3
	timestampLen = 12
	sequenceLen  = 5
	timeLayout   = "200601021504"
)

// parseOrder fixes the tag probe order. Tag substrings are disjoint per
// length class, so the order carries no ambiguity; it is kept stable for
// compatibility with historical numbers.
var parseOrder = []Tag{TagDistribution, TagOrder, TagExtract, TagClone, TagPlant, TagHarvest}

// Generator builds control numbers. Clock and random source are injected so
// that formatting is reproducible under test.
type Generator struct {
	now  func() time.Time
	rand io.Reader
}

// NewGenerator returns a generator using the real clock and crypto/rand.
func NewGenerator() *Generator {
	return &Generator{now: time.Now, rand: cryptorand.Reader}
}

// NewGeneratorWith injects a clock and random source. Nil arguments fall
// back to the real implementations.
func NewGeneratorWith(now func() time.Time, rnd io.Reader) *Generator {
	g := NewGenerator()
	if now != nil {
		g.now = now
	}
	if rnd != nil {
		g.rand = rnd
	}
	return g
}

// Format renders `<3 random A-Z><tag><YYYYMMDDHHMM><5-digit sequence>`.
// Sequences outside [1, MaxSequence] are rejected rather than truncated.
func (g *Generator) Format(tag Tag, sequence int64) (string, error) {
	if !knownTag(tag) {
		return "", fmt.Errorf("unknown control number tag %q", tag)
	}
	if sequence < 1 {
		return "", fmt.Errorf("sequence must be positive, got %d", sequence)
	}
	if sequence > MaxSequence {
		return "", fmt.Errorf("sequence %d: %w", sequence, ErrOverflow)
	}
	stamp := g.now().Format(timeLayout)
	return fmt.Sprintf("%s%s%s%05d", g.prefix(), tag, stamp, sequence), nil
}

// Parsed holds the components recovered from a control number.
type Parsed struct {
	Prefix    string
	Tag       Tag
	Timestamp time.Time
	Sequence  int64
}

// Parse attempts each known tag pattern and returns the first structural
// match, or nil when the string matches no known pattern.
func Parse(s string) *Parsed {
	for _, tag := range parseOrder {
		if p := tryParse(s, tag); p != nil {
			return p
		}
	}
	return nil
}

func tryParse(s string, tag Tag) *Parsed {
	want := prefixLen + len(tag) + timestampLen + sequenceLen
	if len(s) != want {
		return nil
	}
	prefix := s[:prefixLen]
	for i := 0; i < prefixLen; i++ {
		if prefix[i] < 'A' || prefix[i] > 'Z' {
			return nil
		}
	}
	if s[prefixLen:prefixLen+len(tag)] != string(tag) {
		return nil
	}
	rest := s[prefixLen+len(tag):]
	ts, err := time.Parse(timeLayout, rest[:timestampLen])
	if err != nil {
		return nil
	}
	seq, err := strconv.ParseInt(rest[timestampLen:], 10, 64)
	if err != nil || seq < 0 {
		return nil
	}
	return &Parsed{Prefix: prefix, Tag: tag, Timestamp: ts, Sequence: seq}
}

func (g *Generator) prefix() string {
	buf := make([]byte, prefixLen)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		// Random source exhausted; derive letters from the clock instead.
		n := g.now().UnixNano()
		for i := range buf {
			buf[i] = byte(n % 26)
			n /= 26
		}
	}
	letters := make([]byte, prefixLen)
	for i, b := range buf {
		letters[i] = 'A' + b%26
	}
	return string(letters)
}

func knownTag(tag Tag) bool {
	switch tag {
	case TagPlant, TagClone, TagHarvest, TagExtract, TagDistribution, TagOrder:
		return true
	}
	return false
}
