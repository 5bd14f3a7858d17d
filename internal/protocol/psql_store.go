package protocol

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PsqlSchema creates the protocol table used by PsqlStore.
const PsqlSchema = `
CREATE TABLE IF NOT EXISTS protocol (
	id SERIAL PRIMARY KEY,
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

// PsqlStore reads protocols from the PostgreSQL protocol table, in id order.
type PsqlStore struct {
	db *pgxpool.Pool
}

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

func (s *PsqlStore) LoadAll(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.Query(
		ctx,
		fmt.Sprintf(`SELECT %s FROM protocol ORDER BY id ASC;`, strings.Join(sqlColumns, ", ")),
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

func (s *PsqlStore) Close() error {
	s.db.Close()
	return nil
}
