package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
)

const utf8BOM = "\ufeff"

// DecodeText returns data as UTF-8. Input that is not valid UTF-8 is assumed to be
// Windows-1252, the usual encoding of spreadsheets exported on Brazilian Windows machines.
func DecodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), utf8BOM), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode as windows-1252: %w", err)
	}
	return string(out), nil
}

// ParseCSV reads an inventory table. Lines that cannot be parsed or carry more fields than the
// header are skipped and counted; short lines are padded with blanks.
func ParseCSV(text string) ([]model.RawRow, int, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("inventory csv is empty")
		}
		return nil, 0, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []model.RawRow
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil || len(record) > len(header) {
			skipped++
			continue
		}
		row := make(model.RawRow, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}
