package contacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LoadFile reads every recipient from a CSV file.
func LoadFile(path string) ([]Recipient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrSourceUnavailable, err)
	}
	defer f.Close()

	recipients, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return recipients, nil
}

// Load reads every recipient from CSV data with a header row.
// Short rows leave the missing columns empty; extra cells are ignored.
func Load(r io.Reader) ([]Recipient, error) {
	// Strip a UTF-8 BOM if present, otherwise pass the bytes through unchanged.
	decoder := unicode.UTF8.NewDecoder()
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(decoder)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrSourceUnavailable, err)
	}

	columns := make([]string, len(header))
	hasEmail := false
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
		if columns[i] == FieldEmail {
			hasEmail = true
		}
	}
	if !hasEmail {
		return nil, errors.Join(ErrSourceUnavailable, ErrMissingEmailColumn)
	}

	var recipients []Recipient
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Join(ErrSourceUnavailable, err)
		}

		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(row) {
				fields[col] = row[i]
			} else {
				fields[col] = ""
			}
		}
		recipients = append(recipients, Recipient{fields: fields})
	}

	return recipients, nil
}
