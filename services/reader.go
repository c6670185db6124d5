package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"review-importer/models"
)

var candidateDelimiters = []rune{',', ';', '\t', '|'}

// ReadTable parses uploaded CSV content into a RawTable. Structural problems
// are returned as *InputError.
func ReadTable(content []byte) (*models.RawTable, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, newInputError(0, ErrEmptyInput, ErrEmptyInput.Error(), "Ensure the CSV file contains data")
	}

	// the decoder substitutes invalid bytes, so validate before stripping the BOM
	if !utf8.Valid(content) {
		return nil, newInputError(0, ErrInvalidEncoding,
			"File encoding is not UTF-8",
			"Save the file with UTF-8 encoding and upload it again")
	}
	decoded, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), content)
	if err != nil {
		return nil, newInputError(0, ErrInvalidEncoding,
			"File encoding is not UTF-8",
			"Save the file with UTF-8 encoding and upload it again")
	}
	if len(bytes.TrimSpace(decoded)) == 0 {
		return nil, newInputError(0, ErrEmptyInput, ErrEmptyInput.Error(), "Ensure the CSV file contains data")
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.Comma = sniffDelimiter(decoded)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, csvError(err)
	}
	columns := dedupeColumns(header)

	table := &models.RawTable{Columns: columns}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		if isBlankRecord(record) {
			continue
		}
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			row[col] = record[i]
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, newInputError(0, ErrEmptyInput, ErrEmptyInput.Error(), "Ensure the CSV file contains data")
	}
	return table, nil
}

// sniffDelimiter picks the candidate that occurs most often in the header
// line, defaulting to a comma.
func sniffDelimiter(content []byte) rune {
	line := string(content)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// dedupeColumns trims header names and suffixes repeats as name.1, name.2,
// skipping suffixes already taken by another column.
func dedupeColumns(header []string) []string {
	used := make(map[string]bool, len(header))
	for _, h := range header {
		used[strings.TrimSpace(h)] = true
	}

	seen := make(map[string]bool, len(header))
	next := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if !seen[name] {
			seen[name] = true
			out[i] = name
			continue
		}
		candidate := name
		for n := next[name] + 1; ; n++ {
			candidate = name + "." + strconv.Itoa(n)
			if !used[candidate] {
				next[name] = n
				break
			}
		}
		used[candidate] = true
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		if errors.Is(pe.Err, csv.ErrFieldCount) {
			return newInputError(pe.Line, err,
				"row has a different number of fields than the header",
				"Make sure text with commas is properly quoted",
				"Check that every row has the same number of columns as the header")
		}
		return newInputError(pe.Line, err, fmt.Sprintf("malformed CSV: %v", pe.Err))
	}
	return newInputError(0, err, fmt.Sprintf("could not read CSV: %v", err))
}
