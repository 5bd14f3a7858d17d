package protocol

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// column names of the protocol table, in Columns() order
var sqlColumns = []string{
	"age_bracket",
	"gender",
	"primary_sport",
	"training_frequency",
	"training_intensity",
	"coaching_sessions",
	"years_of_practice",
	"secondary_sport",
	"training_frequency_2",
	"training_intensity_2",
	"coaching_sessions_2",
	"years_of_practice_2",
	"allergens",
	"medical_history",
	"handedness",
	"target",
	"recommended_stack",
	"protocol",
	"timing",
	"dosage",
	"nutrition_advice",
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS protocol (
	age_bracket TEXT NOT NULL,
	gender TEXT NOT NULL,
	primary_sport TEXT NOT NULL,
	training_frequency TEXT NOT NULL,
	training_intensity TEXT NOT NULL,
	coaching_sessions TEXT NOT NULL,
	years_of_practice TEXT NOT NULL,
	secondary_sport TEXT NOT NULL,
	training_frequency_2 TEXT NOT NULL,
	training_intensity_2 TEXT NOT NULL,
	coaching_sessions_2 TEXT NOT NULL,
	years_of_practice_2 TEXT NOT NULL,
	allergens TEXT NOT NULL,
	medical_history TEXT NOT NULL,
	handedness TEXT NOT NULL,
	target TEXT NOT NULL,
	recommended_stack TEXT NOT NULL,
	protocol TEXT NOT NULL,
	timing TEXT NOT NULL,
	dosage TEXT NOT NULL,
	nutrition_advice TEXT NOT NULL
);`

// SQLiteStore reads protocols from the protocol table of a SQLite file.
// Row order is insertion (rowid) order.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLiteStore opens an existing protocols database.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, storeUnavailable(fmt.Errorf("stat sqlite db: %w", err))
	}
	return openSQLite(dbPath)
}

// CreateSQLiteStore creates (or opens) a protocols database and ensures the schema exists.
func CreateSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s, err := openSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func openSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, storeUnavailable(fmt.Errorf("open database: %w", err))
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, storeUnavailable(fmt.Errorf("configure pragmas: %w", err))
	}
	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		fmt.Sprintf(`SELECT %s FROM protocol ORDER BY rowid;`, strings.Join(sqlColumns, ", ")),
	)
	if err != nil {
		return nil, storeUnavailable(fmt.Errorf("query protocols: %w", err))
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		row := make([]string, ColumnCount)
		dest := make([]any, ColumnCount)
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, storeUnavailable(fmt.Errorf("rows scan: %w", err))
		}
		record, err := RecordFromRow(row)
		if err != nil {
			return nil, storeUnavailable(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, storeUnavailable(err)
	}

	return records, nil
}

// Import appends records to the protocol table in a single transaction, keeping their order.
func (s *SQLiteStore) Import(ctx context.Context, records []*Record) (_ int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", ColumnCount), ", ")
	stmt, err := tx.PrepareContext(
		ctx,
		fmt.Sprintf(`INSERT INTO protocol (%s) VALUES (%s);`, strings.Join(sqlColumns, ", "), placeholders),
	)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		row := r.Row()
		args := make([]any, len(row))
		for j := range row {
			args[j] = row[j]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
