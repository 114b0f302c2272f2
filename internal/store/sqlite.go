package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/jinhak-lab/admitscan/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Used for local
// single-operator runs where a Postgres instance is overkill.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS admission_records (
	id               TEXT PRIMARY KEY,
	university       TEXT NOT NULL,
	year             INTEGER NOT NULL,
	admission_type   TEXT NOT NULL DEFAULT '',
	department       TEXT NOT NULL,
	quota            INTEGER,
	competition_rate REAL,
	waitlist_rank    INTEGER,
	cut50            REAL,
	cut70            REAL,
	cut100           REAL,
	cut50_raw        TEXT,
	cut70_raw        TEXT,
	subjects         TEXT,
	source           TEXT NOT NULL,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (university, department, admission_type, year)
);

CREATE INDEX IF NOT EXISTS idx_admission_records_university ON admission_records(university);
CREATE INDEX IF NOT EXISTS idx_admission_records_univ_year ON admission_records(university, year);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ReplaceRecords(ctx context.Context, batch model.Batch) (ReplaceResult, error) {
	records := dedupeRecords(batch.Records)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ReplaceResult{}, eris.Wrap(err, "sqlite: begin replace")
	}
	defer tx.Rollback() //nolint:errcheck

	var res ReplaceResult
	for _, year := range batch.Years() {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM admission_records WHERE university = ? AND year = ?`,
			batch.University.Name, year,
		)
		if err != nil {
			return ReplaceResult{}, eris.Wrapf(err, "sqlite: delete %s/%d", batch.University.Name, year)
		}
		deleted, _ := result.RowsAffected()
		res.Deleted += int(deleted)
	}

	for _, r := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO admission_records (
				id, university, year, admission_type, department,
				quota, competition_rate, waitlist_rank,
				cut50, cut70, cut50_raw, cut70_raw, subjects, source
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), batch.University.Name, r.Year, r.AdmissionType, r.DepartmentName,
			r.Quota, r.CompetitionRate, r.WaitlistRank,
			parseCut(r.Cut50), parseCut(r.Cut70), r.Cut50, r.Cut70,
			r.Subjects, string(batch.Source),
		)
		if err != nil {
			return ReplaceResult{}, eris.Wrapf(err, "sqlite: insert %s/%s", batch.University.Name, r.DepartmentName)
		}
		res.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return ReplaceResult{}, eris.Wrap(err, "sqlite: commit replace")
	}
	return res, nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context) ([]model.StoredRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, university, year, admission_type, department,
		       quota, competition_rate, waitlist_rank,
		       cut50, cut70, cut100, subjects
		FROM admission_records
		ORDER BY university, admission_type, department, year`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var records []model.StoredRecord
	for rows.Next() {
		var (
			r        model.StoredRecord
			quota    sql.NullInt64
			rate     sql.NullFloat64
			waitlist sql.NullInt64
			cut50    sql.NullFloat64
			cut70    sql.NullFloat64
			cut100   sql.NullFloat64
			subjects sql.NullString
		)
		if err := rows.Scan(
			&r.ID, &r.UniversityName, &r.Year, &r.AdmissionType, &r.DepartmentName,
			&quota, &rate, &waitlist, &cut50, &cut70, &cut100, &subjects,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		if quota.Valid {
			v := int(quota.Int64)
			r.Quota = &v
		}
		if rate.Valid {
			r.CompetitionRate = &rate.Float64
		}
		if waitlist.Valid {
			v := int(waitlist.Int64)
			r.WaitlistRank = &v
		}
		if cut50.Valid {
			r.Cut50 = &cut50.Float64
		}
		if cut70.Valid {
			r.Cut70 = &cut70.Float64
		}
		if cut100.Valid {
			r.Cut100 = &cut100.Float64
		}
		if subjects.Valid {
			r.Subjects = &subjects.String
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate records")
}

func (s *SQLiteStore) ListUniversities(ctx context.Context) ([]UniversitySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT university, COUNT(*), MIN(year), MAX(year)
		FROM admission_records
		GROUP BY university
		ORDER BY university`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list universities")
	}
	defer rows.Close()

	var summaries []UniversitySummary
	for rows.Next() {
		var u UniversitySummary
		if err := rows.Scan(&u.Name, &u.Records, &u.MinYear, &u.MaxYear); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan university")
		}
		summaries = append(summaries, u)
	}
	return summaries, eris.Wrap(rows.Err(), "sqlite: iterate universities")
}

func (s *SQLiteStore) UpdateCut100(ctx context.Context, id string, cut100 float64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE admission_records SET cut100 = ? WHERE id = ?`,
		cut100, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update cut100 for %s", id)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return eris.Errorf("sqlite: record %s not found", id)
	}
	return nil
}
