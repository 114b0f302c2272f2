package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/jinhak-lab/admitscan/internal/db"
	"github.com/jinhak-lab/admitscan/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 5
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS admission_records (
	id               TEXT PRIMARY KEY,
	university       TEXT NOT NULL,
	year             INT NOT NULL,
	admission_type   TEXT NOT NULL DEFAULT '',
	department       TEXT NOT NULL,
	quota            INT,
	competition_rate DOUBLE PRECISION,
	waitlist_rank    INT,
	cut50            DOUBLE PRECISION,
	cut70            DOUBLE PRECISION,
	cut100           DOUBLE PRECISION,
	cut50_raw        TEXT,
	cut70_raw        TEXT,
	subjects         TEXT,
	source           TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (university, department, admission_type, year)
);

CREATE INDEX IF NOT EXISTS idx_admission_records_university ON admission_records(university);
CREATE INDEX IF NOT EXISTS idx_admission_records_univ_year ON admission_records(university, year);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// recordColumns is the insert column order shared by the COPY path.
var recordColumns = []string{
	"id", "university", "year", "admission_type", "department",
	"quota", "competition_rate", "waitlist_rank",
	"cut50", "cut70", "cut50_raw", "cut70_raw",
	"subjects", "source",
}

func (s *PostgresStore) ReplaceRecords(ctx context.Context, batch model.Batch) (ReplaceResult, error) {
	records := dedupeRecords(batch.Records)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ReplaceResult{}, eris.Wrap(err, "postgres: begin replace")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var res ReplaceResult
	for _, year := range batch.Years() {
		tag, err := tx.Exec(ctx,
			`DELETE FROM admission_records WHERE university = $1 AND year = $2`,
			batch.University.Name, year,
		)
		if err != nil {
			return ReplaceResult{}, eris.Wrapf(err, "postgres: delete %s/%d", batch.University.Name, year)
		}
		res.Deleted += int(tag.RowsAffected())
	}

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			uuid.New().String(), batch.University.Name, r.Year, r.AdmissionType, r.DepartmentName,
			r.Quota, r.CompetitionRate, r.WaitlistRank,
			parseCut(r.Cut50), parseCut(r.Cut70), r.Cut50, r.Cut70,
			r.Subjects, string(batch.Source),
		})
	}
	n, err := db.CopyInto(ctx, tx, "admission_records", recordColumns, rows)
	if err != nil {
		return ReplaceResult{}, eris.Wrapf(err, "postgres: insert %s", batch.University.Name)
	}
	res.Inserted = int(n)

	if err := tx.Commit(ctx); err != nil {
		return ReplaceResult{}, eris.Wrap(err, "postgres: commit replace")
	}
	return res, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context) ([]model.StoredRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, university, year, admission_type, department,
		       quota, competition_rate, waitlist_rank,
		       cut50, cut70, cut100, subjects
		FROM admission_records
		ORDER BY university, admission_type, department, year`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var records []model.StoredRecord
	for rows.Next() {
		var r model.StoredRecord
		if err := rows.Scan(
			&r.ID, &r.UniversityName, &r.Year, &r.AdmissionType, &r.DepartmentName,
			&r.Quota, &r.CompetitionRate, &r.WaitlistRank,
			&r.Cut50, &r.Cut70, &r.Cut100, &r.Subjects,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: iterate records")
}

func (s *PostgresStore) ListUniversities(ctx context.Context) ([]UniversitySummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT university, COUNT(*), MIN(year), MAX(year)
		FROM admission_records
		GROUP BY university
		ORDER BY university`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list universities")
	}
	defer rows.Close()

	var summaries []UniversitySummary
	for rows.Next() {
		var u UniversitySummary
		if err := rows.Scan(&u.Name, &u.Records, &u.MinYear, &u.MaxYear); err != nil {
			return nil, eris.Wrap(err, "postgres: scan university")
		}
		summaries = append(summaries, u)
	}
	return summaries, eris.Wrap(rows.Err(), "postgres: iterate universities")
}

func (s *PostgresStore) UpdateCut100(ctx context.Context, id string, cut100 float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE admission_records SET cut100 = $1 WHERE id = $2`,
		cut100, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update cut100 for %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: record %s not found", id)
	}
	return nil
}
