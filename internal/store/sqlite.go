package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rmehta3/jobdigest/internal/model"
)

// SQLiteStore persists posting fingerprints and digest-send status in a
// SQLite database. It is the only stateful component in the pipeline.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the postings table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS postings (
		id                    INTEGER PRIMARY KEY AUTOINCREMENT,
		fingerprint           TEXT UNIQUE NOT NULL,
		title                 TEXT NOT NULL,
		company               TEXT NOT NULL,
		location              TEXT,
		category              TEXT,
		source                TEXT,
		url                   TEXT,
		description           TEXT,
		posted_date           DATETIME,
		discovered_date       DATETIME NOT NULL,
		sponsor_confidence    TEXT,
		entry_level_reasoning TEXT,
		score                 REAL,
		sent                  INTEGER DEFAULT 0,
		sent_date             DATETIME
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating postings table: %w", err)
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_postings_fingerprint ON postings(fingerprint)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_sent ON postings(sent)`,
	} {
		if _, err := db.Exec(idx); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// InsertIfNew stores a posting snapshot keyed by its fingerprint. Returns
// (id, true) when a new row was inserted, or (0, false) without error when
// the fingerprint already exists. A duplicate is a normal outcome, not a
// failure; the existing row is never updated.
func (s *SQLiteStore) InsertIfNew(p model.Posting) (int64, bool, error) {
	fp := Fingerprint(p)

	var postedAt any
	if p.PostedAt != nil {
		postedAt = *p.PostedAt
	}

	res, err := s.db.Exec(`INSERT OR IGNORE INTO postings (
		fingerprint, title, company, location, category, source, url,
		description, posted_date, discovered_date, sponsor_confidence,
		entry_level_reasoning, score
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fp, p.Title, p.Company, p.Location, string(p.Category), p.Source,
		p.URL, p.Description, postedAt, time.Now(),
		string(p.SponsorConfidence), p.EntryLevelReasoning, p.Score,
	)
	if err != nil {
		return 0, false, fmt.Errorf("inserting posting %q at %q: %w", p.Title, p.Company, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("inserting posting: rows affected: %w", err)
	}
	if affected == 0 {
		return 0, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("inserting posting: last insert id: %w", err)
	}
	return id, true, nil
}

// ListUnsent returns all postings not yet included in a digest, ordered by
// score descending. Ties break on insertion order.
func (s *SQLiteStore) ListUnsent() ([]model.Record, error) {
	rows, err := s.db.Query(selectColumns + ` WHERE sent = 0 ORDER BY score DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing unsent postings: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows, "listing unsent postings")
}

// MarkSent flips the sent flag and stamps the send time for each given id.
// The update is all-or-nothing: it runs inside one transaction, and an id
// that matches no row rolls the whole batch back. No-op on empty input.
func (s *SQLiteStore) MarkSent(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("marking postings sent: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, id := range ids {
		res, err := tx.Exec("UPDATE postings SET sent = 1, sent_date = ? WHERE id = ?", now, id)
		if err != nil {
			return fmt.Errorf("marking posting %d sent: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("marking posting %d sent: %w", id, err)
		}
		if affected == 0 {
			return fmt.Errorf("marking posting %d sent: no such record", id)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("marking postings sent: %w", err)
	}
	return nil
}

// PurgeOlderThan deletes postings discovered more than the given number of
// days ago and returns how many rows were removed.
func (s *SQLiteStore) PurgeOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	res, err := s.db.Exec("DELETE FROM postings WHERE discovered_date < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging postings older than %d days: %w", days, err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purging postings: rows affected: %w", err)
	}
	return removed, nil
}

// Stats summarizes the stored postings.
type Stats struct {
	Total  int
	Sent   int
	Unsent int
}

// GetStats returns total/sent/unsent counts.
func (s *SQLiteStore) GetStats() (Stats, error) {
	var st Stats
	row := s.db.QueryRow(`SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN sent = 1 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN sent = 0 THEN 1 ELSE 0 END), 0)
	FROM postings`)
	if err := row.Scan(&st.Total, &st.Sent, &st.Unsent); err != nil {
		return Stats{}, fmt.Errorf("reading store stats: %w", err)
	}
	return st, nil
}

// ListAll returns every stored posting, newest first. Used by the review TUI.
func (s *SQLiteStore) ListAll() ([]model.Record, error) {
	rows, err := s.db.Query(selectColumns + ` ORDER BY discovered_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing postings: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows, "listing postings")
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT
	id, fingerprint, title, company, location, category, source, url,
	description, posted_date, discovered_date, sponsor_confidence,
	entry_level_reasoning, score, sent, sent_date
FROM postings`

func collectRecords(rows *sql.Rows, op string) ([]model.Record, error) {
	var records []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (model.Record, error) {
	var (
		rec        model.Record
		category   sql.NullString
		confidence sql.NullString
		postedAt   sql.NullTime
		sentAt     sql.NullTime
		sent       int
	)
	err := rows.Scan(
		&rec.ID, &rec.Fingerprint, &rec.Posting.Title, &rec.Posting.Company,
		&rec.Posting.Location, &category, &rec.Posting.Source,
		&rec.Posting.URL, &rec.Posting.Description, &postedAt,
		&rec.DiscoveredAt, &confidence, &rec.Posting.EntryLevelReasoning,
		&rec.Posting.Score, &sent, &sentAt,
	)
	if err != nil {
		return model.Record{}, err
	}
	rec.Posting.Category = model.Category(category.String)
	rec.Posting.SponsorConfidence = model.Confidence(confidence.String)
	if postedAt.Valid {
		t := postedAt.Time
		rec.Posting.PostedAt = &t
	}
	rec.Sent = sent != 0
	if sentAt.Valid {
		t := sentAt.Time
		rec.SentAt = &t
	}
	return rec, nil
}
