package protocol

import "fmt"

// Payload is the recommendation part of a protocol, shared by stored records and fallbacks.
type Payload struct {
	RecommendedStack string `json:"recommendedStack"`
	Protocol         string `json:"protocol"`
	Timing           string `json:"timing"`
	Dosage           string `json:"dosage"`
	NutritionAdvice  string `json:"nutritionAdvice"`
}

// Record is a stored protocol row: the 16 matching attributes plus the payload.
// Records are never mutated after load.
type Record struct {
	Profile
	Payload
}

// ColumnCount is the number of columns of a persisted protocol row.
const ColumnCount = 21

var payloadNames = [5]string{
	"Recommended Stack",
	"Protocol",
	"Timing",
	"Dosage",
	"Nutrition Advice",
}

// Columns returns the 21 persisted column labels, matching attributes first.
func Columns() []string {
	cols := make([]string, 0, ColumnCount)
	cols = append(cols, attributeNames[:]...)
	cols = append(cols, payloadNames[:]...)
	return cols
}

// RecordFromRow builds a record from a 21-column row.
func RecordFromRow(row []string) (*Record, error) {
	if len(row) != ColumnCount {
		return nil, fmt.Errorf("row has %d columns, expected %d", len(row), ColumnCount)
	}

	var k Key
	copy(k[:], row[:16])
	return &Record{
		Profile: ProfileFromKey(k),
		Payload: Payload{
			RecommendedStack: row[16],
			Protocol:         row[17],
			Timing:           row[18],
			Dosage:           row[19],
			NutritionAdvice:  row[20],
		},
	}, nil
}

// Row is the inverse of RecordFromRow.
func (r *Record) Row() []string {
	k := r.Key()
	row := make([]string, 0, ColumnCount)
	row = append(row, k[:]...)
	return append(row,
		r.RecommendedStack,
		r.Protocol,
		r.Timing,
		r.Dosage,
		r.NutritionAdvice,
	)
}
