package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pythia-ppl/pythia/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newRun(model, backend string) store.Run {
	return store.Run{
		ID:          store.NewRunID(),
		Model:       model,
		SourceHash:  store.SourceHash([]byte(model)),
		Backend:     backend,
		Diagnostics: "[]",
		Code:        "@model function " + model + "()\nend\n",
	}
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s1, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := store.Open(path)
	require.NoError(t, err)
	assert.NoError(t, s2.Close())
}

func TestWriteAndGetRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	run := newRun("coin", "turing")
	run.Diagnostics = `[{"severity":"warning","code":"L302","line":3,"column":1,"message":"rewrite"}]`
	require.NoError(t, s.WriteRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "coin", got.Model)
	assert.Equal(t, "turing", got.Backend)
	assert.Equal(t, run.SourceHash, got.SourceHash)
	assert.Equal(t, run.Diagnostics, got.Diagnostics)
	assert.Equal(t, run.Code, got.Code)
}

func TestWriteRunValidation(t *testing.T) {
	s := openStore(t)

	err := s.WriteRun(context.Background(), store.Run{Model: "coin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}

func TestWriteRunIdempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	run := newRun("coin", "turing")
	require.NoError(t, s.WriteRun(ctx, run))

	// A duplicate id is silently ignored; the first record wins.
	dup := run
	dup.Backend = "gen"
	require.NoError(t, s.WriteRun(ctx, dup))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "turing", got.Backend)
}

func TestWriteRunDefaultsDiagnostics(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	run := newRun("coin", "pyro")
	run.Diagnostics = ""
	require.NoError(t, s.WriteRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "[]", got.Diagnostics)
}

func TestGetRunNotFound(t *testing.T) {
	s := openStore(t)

	_, err := s.GetRun(context.Background(), store.NewRunID())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	// IDs are time-ordered, so insertion order is creation order.
	first := newRun("coin", "turing")
	second := newRun("coin", "gen")
	third := newRun("hmm", "turing")
	for _, run := range []store.Run{first, second, third} {
		require.NoError(t, s.WriteRun(ctx, run))
	}

	all, err := s.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID, "newest first")
	assert.Equal(t, first.ID, all[2].ID)

	coin, err := s.ListRuns(ctx, "coin", 0)
	require.NoError(t, err)
	require.Len(t, coin, 2)
	assert.Equal(t, second.ID, coin[0].ID)

	limited, err := s.ListRuns(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := s.ListRuns(ctx, "absent", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNewRunID(t *testing.T) {
	a := store.NewRunID()
	b := store.NewRunID()
	assert.NotEqual(t, a, b)

	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	// Version 7 ids sort by creation time as plain strings.
	assert.Less(t, a, b)
}

func TestSourceHash(t *testing.T) {
	h := store.SourceHash([]byte("model: coin: {}"))
	assert.Len(t, h, 64)
	assert.Equal(t, h, store.SourceHash([]byte("model: coin: {}")))
	assert.NotEqual(t, h, store.SourceHash([]byte("model: hmm: {}")))
}
