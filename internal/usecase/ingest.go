// Package usecase contains application business logic services.
package usecase

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
	"github.com/fairyhunter13/ai-candidate-ranker/pkg/textx"
)

// ParseCandidatesCSV reads candidate rows from a headered CSV stream. Column
// order is free; headers are matched case-insensitively. Unknown columns are
// ignored and missing ones leave their fields at defaults, but a structurally
// broken CSV is an input error surfaced to the uploader.
func ParseCandidatesCSV(r io.Reader) ([]domain.RawCandidateRow, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty csv", domain.ErrInvalidArgument)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: csv header: %v", domain.ErrInvalidArgument, err)
	}
	cols := columnIndex(header)

	var rows []domain.RawCandidateRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv parse: %v", domain.ErrInvalidArgument, err)
		}
		row := domain.RawCandidateRow{
			SourceIndex:     len(rows),
			Name:            textx.SanitizeText(cols.get(record, "name")),
			Title:           textx.SanitizeText(cols.get(record, "title")),
			Company:         textx.SanitizeText(cols.get(record, "company")),
			Location:        textx.SanitizeText(cols.get(record, "location")),
			YearsExperience: parseIntDefault(cols.get(record, "years_experience")),
			BaseSalary:      parseOptionalInt(cols.get(record, "base_salary")),
			OTE:             parseOptionalInt(cols.get(record, "ote")),
			OpenToRemote:    parseBool(cols.get(record, "open_to_remote")),
			OpenToTravel:    parseBool(cols.get(record, "open_to_travel")),
			Enrichment:      cols.get(record, "enrichment"),
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: csv has no candidate rows", domain.ErrInvalidArgument)
	}
	return rows, nil
}

// columns maps normalized header names to record positions.
type columns map[string]int

func columnIndex(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	return cols
}

func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "﻿")
	return strings.ReplaceAll(h, " ", "_")
}

// parseIntDefault reads a loose integer, tolerating float formatting such as
// "7.0" from spreadsheet exports. Unparseable input yields zero.
func parseIntDefault(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseOptionalInt(s string) *int {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}
