package formatter

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/songshift/internal/models"
)

// ReadMappings parses headerless "sourceId,externalId" rows.
//
// Rows without exactly two non-empty fields, or remapping an id already seen, are skipped and
// counted.
func ReadMappings(r io.Reader) (*models.MappingTable, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	table := models.NewMappingTable()
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, skipped, fmt.Errorf("failed to read mapping: %w", err)
		}

		if len(record) != 2 || record[0] == "" || record[1] == "" {
			skipped++
			continue
		}
		if err := table.Put(record[0], record[1]); err != nil {
			skipped++
		}
	}

	return table, skipped, nil
}

// WriteMappings writes table as headerless CSV rows in insertion order.
func WriteMappings(w io.Writer, table *models.MappingTable) error {
	writer := csv.NewWriter(w)
	for _, key := range table.Keys() {
		externalID, _ := table.Get(key)
		if err := writer.Write([]string{key, externalID}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

// CSVMappingStore persists a [models.MappingTable] in a CSV file.
type CSVMappingStore struct {
	Path string
}

// NewCSVMappingStore creates a store backed by the file at path.
func NewCSVMappingStore(path string) *CSVMappingStore {
	return &CSVMappingStore{Path: path}
}

// Load reads the mapping file. A missing file is an empty table.
func (s *CSVMappingStore) Load(ctx context.Context) (*models.MappingTable, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return models.NewMappingTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer f.Close()

	table, _, err := ReadMappings(f)
	return table, err
}

// Save overwrites the mapping file with table.
func (s *CSVMappingStore) Save(ctx context.Context, table *models.MappingTable) error {
	return writeFile(s.Path, func(w io.Writer) error { return WriteMappings(w, table) })
}

func (s *CSVMappingStore) String() string {
	return "csv:" + s.Path
}
