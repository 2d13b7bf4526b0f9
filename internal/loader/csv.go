package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"mapcheck/internal/mapping"
)

// CSVSource reads a mapping document from a spreadsheet-derived CSV file.
// The first row is a header naming the flat-record columns; column order
// is free and unknown columns are ignored. If the file carries a
// mapping_name column, rows are filtered to the requested document;
// without that column the whole file is treated as one document.
type CSVSource struct {
	Path string
}

// NewCSVSource builds a source for one CSV file.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Load reads and filters the record sequence for mappingName, preserving
// file order.
func (s *CSVSource) Load(ctx context.Context, mappingName string) ([]mapping.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are tolerated, cells default to absent
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s (empty file)", ErrMappingNotFound, mappingName)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	_, hasNameColumn := header["mapping_name"]

	cell := func(row []string, column string) string {
		idx, ok := header[column]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var records []mapping.RawRecord
	for _, row := range rows[1:] {
		name := cell(row, "mapping_name")
		if hasNameColumn && name != mappingName {
			continue
		}

		rec := mapping.RawRecord{
			Type:                cell(row, "type"),
			MappingName:         name,
			Alias:               cell(row, "alias"),
			Definition:          cell(row, "definition"),
			JoinType:            cell(row, "join_type"),
			LeftAlias:           cell(row, "left_alias"),
			RightAlias:          cell(row, "right_alias"),
			JoinCondition:       cell(row, "join_condition"),
			LoadStrategy:        cell(row, "load_strategy"),
			TargetFieldName:     cell(row, "target_field_name"),
			TransformationLogic: cell(row, "transformation_logic"),
			SourceAlias:         cell(row, "source_alias"),
			SourceField:         cell(row, "source_field"),
			DefaultValue:        cell(row, "default_value"),
		}
		if v, ok := parseBool(cell(row, "is_active")); ok {
			rec.IsActive = &v
		}
		if v, ok := parseBool(cell(row, "target_pk")); ok {
			rec.TargetPK = v
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMappingNotFound, mappingName)
	}
	return records, nil
}

// Mappings lists the distinct mapping names in the file, in first-seen
// order. Files without a mapping_name column expose a single unnamed
// document.
func (s *CSVSource) Mappings(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	nameIdx := -1
	for i, name := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(name), "mapping_name") {
			nameIdx = i
		}
	}
	if nameIdx < 0 {
		return []string{""}, nil
	}

	seen := make(map[string]struct{})
	var names []string
	for _, row := range rows[1:] {
		if nameIdx >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameIdx])
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}
