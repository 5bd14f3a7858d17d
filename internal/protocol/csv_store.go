package protocol

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// CSVStore reads protocols from a CSV file: one header row, then 21 columns per row.
type CSVStore struct {
	path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{
		path: path,
	}
}

func (s *CSVStore) LoadAll(_ context.Context) ([]*Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, storeUnavailable(fmt.Errorf("open protocols csv: %w", err))
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnf("close protocols csv file: %s", err)
		}
	}()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, storeUnavailable(fmt.Errorf("read protocols csv [%s]: %w", s.path, err))
	}
	return records, nil
}

func (s *CSVStore) Close() error {
	return nil
}

// ReadCSV parses protocol rows from r. The first row is the header and is skipped.
func ReadCSV(r io.Reader) ([]*Record, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = ColumnCount
	csvReader.TrimLeadingSpace = false
	// a stray quote inside unquoted payload text is kept as written
	csvReader.LazyQuotes = true

	if _, err := csvReader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records []*Record
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		record, err := RecordFromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// WriteCSV writes the header and records to w.
func WriteCSV(w io.Writer, records []*Record) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(Columns()); err != nil {
		return err
	}
	for _, r := range records {
		if err := csvWriter.Write(r.Row()); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func storeUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
