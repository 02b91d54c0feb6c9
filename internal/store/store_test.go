package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/besselx/internal/testutil"
	"github.com/roach88/besselx/pkg/bessel"
)

// openTestStore opens an in-memory store with a deterministic clock and
// fixed run ids.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:",
		WithClock(testutil.NewDeterministicClock()),
		WithIDGenerator(testutil.NewFixedIDGenerator("run-1", "run-2", "run-3")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func stubEvaluator(k *testutil.StubKernel) *bessel.Evaluator {
	return bessel.New(k, bessel.WithSink(bessel.Discard))
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"runs", "evaluations", "warnings"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	assert.NoError(t, s.verifyPragma(ctx, "journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma(ctx, "synchronous", "1"))
	assert.NoError(t, s.verifyPragma(ctx, "busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma(ctx, "foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma(ctx, "user_version", "1"))
}

func TestOpen_MigratesV0Database(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE runs (
			id TEXT PRIMARY KEY, seq INTEGER NOT NULL, label TEXT NOT NULL DEFAULT '',
			backend TEXT NOT NULL, version TEXT NOT NULL
		);
		CREATE TABLE evaluations (
			run_id TEXT NOT NULL REFERENCES runs(id),
			id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			family TEXT NOT NULL,
			scaling INTEGER NOT NULL,
			nu_bits TEXT NOT NULL,
			z_re_bits TEXT NOT NULL,
			z_im_bits TEXT NOT NULL,
			n INTEGER NOT NULL,
			error_code TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			result TEXT NOT NULL DEFAULT '[]',
			PRIMARY KEY (run_id, id)
		);
		INSERT INTO runs VALUES ('old-run', 7, 'legacy', 'series', '0.0.1');
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var count int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('evaluations') WHERE name = 'values_digest'`,
	).Scan(&count))
	assert.Equal(t, 1, count)
	assert.NoError(t, s.verifyPragma(context.Background(), "user_version", "1"))

	// The default clock continues after the largest stored seq.
	run, err := s.StartRun(context.Background(), "", "series")
	require.NoError(t, err)
	assert.Equal(t, int64(8), run.Seq)
}

func TestDefaultClockSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()
	ev := stubEvaluator(testutil.NewStubKernel())

	s, err := Open(path)
	require.NoError(t, err)
	run, err := s.StartRun(ctx, "first", "stub")
	require.NoError(t, err)
	_, err = s.Record(ctx, run.ID, ev, bessel.Request{Family: bessel.FamilyK, Scaling: 1, Nu: 0, Z: 1, N: 1})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	next, err := s.StartRun(ctx, "second", "stub")
	require.NoError(t, err)

	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, int64(3), next.Seq)
}

func TestUUIDv7Generator(t *testing.T) {
	var g UUIDv7Generator
	a, b := g.Generate(), g.Generate()

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, a, b)
}
