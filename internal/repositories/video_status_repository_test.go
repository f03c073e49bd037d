package repositories

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"vidsphere/internal/models"
	"vidsphere/internal/pkg/errors"
)

// fakeDB applies the upsert rule in memory so the repository's handling of
// RowsAffected can be checked without a database.
type fakeDB struct {
	rows    map[string]string
	updated map[string]time.Time
	execErr error
	execs   []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: map[string]string{}, updated: map[string]time.Time{}}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	if len(args) == 0 {
		return pgconn.NewCommandTag("CREATE TABLE"), nil
	}
	id, status := args[0].(string), args[1].(string)
	if cur, ok := f.rows[id]; ok && cur == "completed" && status != "completed" {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	f.rows[id] = status
	f.updated[id] = args[2].(time.Time)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	id := args[0].(string)
	status, ok := f.rows[id]
	return fakeRow{id: id, status: status, at: f.updated[id], found: ok}
}

type fakeRow struct {
	id, status string
	at         time.Time
	found      bool
}

func (r fakeRow) Scan(dest ...any) error {
	if !r.found {
		return pgx.ErrNoRows
	}
	*dest[0].(*string) = r.id
	*dest[1].(*string) = r.status
	*dest[2].(*time.Time) = r.at
	return nil
}

func newRepo(db *fakeDB) *VideoStatusRepository {
	r := NewVideoStatusRepository(db)
	r.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestUpsertTransitions(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(newFakeDB())

	steps := []struct {
		status  models.JobStatus
		wantErr bool
	}{
		{models.JobStatusProcessing, false},
		{models.JobStatusProcessing, false},
		{models.JobStatusCompleted, false},
		{models.JobStatusCompleted, false},
		{models.JobStatusProcessing, true},
	}
	for i, s := range steps {
		_, err := repo.Upsert(ctx, "j1", s.status)
		if s.wantErr {
			if !errors.IsCode(err, errors.CodeConflict) {
				t.Fatalf("step %d: expected conflict, got %v", i, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("step %d: Upsert() error = %v", i, err)
		}
	}

	got, err := repo.Get(ctx, "j1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != models.JobStatusCompleted || got.UpdatedAt.IsZero() {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestUpsertValidates(t *testing.T) {
	repo := newRepo(newFakeDB())
	if _, err := repo.Upsert(context.Background(), "", models.JobStatusCompleted); !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := repo.Upsert(context.Background(), "j1", "failed"); !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpsertSQLGuardsCompleted(t *testing.T) {
	if !strings.Contains(upsertSQL, "video_status.status <> 'completed' OR EXCLUDED.status = 'completed'") {
		t.Fatal("upsert no longer guards completed rows")
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	if _, err := newRepo(newFakeDB()).Get(context.Background(), "nope"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDatabaseErrorsAreWrapped(t *testing.T) {
	db := newFakeDB()
	db.execErr = fmt.Errorf("connection refused")
	repo := newRepo(db)

	if err := repo.EnsureSchema(context.Background()); err == nil || errors.GetCode(err) != errors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	_, err := repo.Upsert(context.Background(), "j1", models.JobStatusProcessing)
	var e *errors.Error
	if !errors.As(err, &e) || e.Op != "repositories.upsert" {
		t.Fatalf("expected wrapped upsert error, got %v", err)
	}
}

func TestUndefinedTableReadsAsNotFound(t *testing.T) {
	repo := NewVideoStatusRepository(undefinedTableDB{})
	if _, err := repo.Get(context.Background(), "j1"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type undefinedTableDB struct{}

func (undefinedTableDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, &pgconn.PgError{Code: "42P01"}
}

func (undefinedTableDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return errRow{&pgconn.PgError{Code: "42P01"}}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }
