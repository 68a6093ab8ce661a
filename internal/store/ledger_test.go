package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "ledger.db")
	l, err := Open(path)
	require.NoError(t, err)
	return l, path
}

func TestLedger_MarkAndUnseen(t *testing.T) {
	l, _ := openLedger(t)
	defer func() { _ = l.Close() }()

	unseen, err := l.Unseen([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, unseen)

	require.NoError(t, l.Mark([]string{"b", ""}, time.Now()))

	unseen, err = l.Unseen([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, unseen)

	n, err := l.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLedger_PersistsAcrossReopen(t *testing.T) {
	l, path := openLedger(t)
	require.NoError(t, l.Mark([]string{"x"}, time.Now()))
	require.NoError(t, l.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	unseen, err := reopened.Unseen([]string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, unseen)
}

func TestLedger_Prune(t *testing.T) {
	l, _ := openLedger(t)
	defer func() { _ = l.Close() }()

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, l.Mark([]string{"old"}, now.Add(-72*time.Hour)))
	require.NoError(t, l.Mark([]string{"new"}, now))

	removed, err := l.Prune(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	unseen, err := l.Unseen([]string{"old", "new"})
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, unseen)
}

func TestOpen_RejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
