package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffSnapshotsReportsChangedFields(t *testing.T) {
	oldRaw := []byte(`{"name":"Room A","active":true,"type":"indoor"}`)
	newRaw := []byte(`{"name":"Room B","active":true,"type":"indoor"}`)

	diffs, err := DiffSnapshots(oldRaw, newRaw)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "name", diffs[0].Field)
	assert.Equal(t, "Room A", diffs[0].Old)
	assert.Equal(t, "Room B", diffs[0].New)
}

func TestDiffSnapshotsHandlesAddedAndRemovedFields(t *testing.T) {
	oldRaw := []byte(`{"notes":"legacy"}`)
	newRaw := []byte(`{"description":"fresh"}`)

	diffs, err := DiffSnapshots(oldRaw, newRaw)
	require.NoError(t, err)
	require.Len(t, diffs, 2)
	// Sorted by field name.
	assert.Equal(t, "description", diffs[0].Field)
	assert.Nil(t, diffs[0].Old)
	assert.Equal(t, "fresh", diffs[0].New)
	assert.Equal(t, "notes", diffs[1].Field)
	assert.Equal(t, "legacy", diffs[1].Old)
	assert.Nil(t, diffs[1].New)
}

func TestDiffSnapshotsEmptyWhenIdentical(t *testing.T) {
	raw := []byte(`{"grams":12.5,"status":"pending"}`)
	diffs, err := DiffSnapshots(raw, raw)
	require.NoError(t, err)
	assert.Empty(t, diffs)
}

func TestDiffSnapshotsToleratesMissingSides(t *testing.T) {
	diffs, err := DiffSnapshots(nil, []byte(`{"name":"new"}`))
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "name", diffs[0].Field)
}
