// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package difflog reads and writes the tabular diff log that couples the
// differ and merger: one CSV row per changed leaf, carrying enough path
// information for the merger to locate it again in a target file.
package difflog

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Merge action values recognized in the "Merge Action" column.
const (
	ActionCreateFile = "Create File"
	ActionUpdateFile = "Update File"
	ActionDeleteFile = "Delete File"
	ActionCreateItem = "Create Item"
	ActionUpdateItem = "Update Item"
	ActionDeleteItem = "Delete Item"
)

// header is the canonical column order (spec.md §6). snakeAliases maps
// each Snake_Case__c spelling to its canonical column name.
var header = []string{
	"Developer Work Log Name", "Request Time Stamp", "Work Team", "Developer Name",
	"User Story", "Merge Action", "Metadata", "Path",
	"L1 Key", "L2 Key", "L3 Key", "L4 Key", "New Value", "Old Value",
}

var snakeAliases = map[string]string{
	"Developer_Work_Log_Name__c": "Developer Work Log Name",
	"Request_Time_Stamp__c":      "Request Time Stamp",
	"Work_Team__c":               "Work Team",
	"Developer_Name__c":          "Developer Name",
	"User_Story__c":              "User Story",
	"Merge_Action__c":            "Merge Action",
	"Metadata__c":                "Metadata",
	"Path__c":                    "Path",
	"L1_Key__c":                  "L1 Key",
	"L2_Key__c":                  "L2 Key",
	"L3_Key__c":                  "L3 Key",
	"L4_Key__c":                  "L4 Key",
	"New_Value__c":               "New Value",
	"Old_Value__c":               "Old Value",
}

func canonicalize(name string) string {
	name = strings.TrimSpace(name)
	if canon, ok := snakeAliases[name]; ok {
		return canon
	}
	return name
}

// Row is one diff-log entry (spec.md §6). OldValues holds "Old Value" plus
// any additional trailing Old Value columns, one per extra target branch,
// in the order they appeared in the CSV.
type Row struct {
	DeveloperWorkLogName string
	RequestTimeStamp     string
	WorkTeam             string
	DeveloperName        string
	UserStory            string
	MergeAction          string
	Metadata             string
	Path                 string
	L1Key                string
	L2Key                string
	L3Key                string
	L4Key                string
	NewValue             string
	OldValues            []string
}

// OldValue returns the primary ("TRG1") old value, or "" if absent.
func (r Row) OldValue() string {
	if len(r.OldValues) == 0 {
		return ""
	}
	return r.OldValues[0]
}

// Keys returns the non-empty L1..L4 path levels, in order.
func (r Row) Keys() []string {
	var out []string
	for _, k := range []string{r.L1Key, r.L2Key, r.L3Key, r.L4Key} {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Read parses a diff log CSV from r. Column order is taken from the
// header row; a missing required column is rejected with a listing of the
// required ones (spec.md §7 "Diff file malformed"), and unrecognized
// columns are ignored.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	headerRow, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("difflog: reading header: %w", err)
	}

	index := make(map[string]int, len(headerRow))
	var oldValueCols []int
	for i, raw := range headerRow {
		name := canonicalize(raw)
		if name == "Old Value" {
			oldValueCols = append(oldValueCols, i)
			continue
		}
		index[name] = i
	}
	for _, want := range header {
		if want == "Old Value" {
			continue
		}
		if _, ok := index[want]; !ok {
			return nil, fmt.Errorf("difflog: malformed diff log: missing required column %q (required: %s)",
				want, strings.Join(header, ", "))
		}
	}
	if len(oldValueCols) == 0 {
		return nil, fmt.Errorf("difflog: malformed diff log: missing required column %q (required: %s)",
			"Old Value", strings.Join(header, ", "))
	}

	field := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("difflog: %w", err)
		}
		row := Row{
			DeveloperWorkLogName: field(rec, "Developer Work Log Name"),
			RequestTimeStamp:     field(rec, "Request Time Stamp"),
			WorkTeam:             field(rec, "Work Team"),
			DeveloperName:        field(rec, "Developer Name"),
			UserStory:            field(rec, "User Story"),
			MergeAction:          field(rec, "Merge Action"),
			Metadata:             field(rec, "Metadata"),
			Path:                 field(rec, "Path"),
			L1Key:                field(rec, "L1 Key"),
			L2Key:                field(rec, "L2 Key"),
			L3Key:                field(rec, "L3 Key"),
			L4Key:                field(rec, "L4 Key"),
			NewValue:             field(rec, "New Value"),
		}
		for _, ci := range oldValueCols {
			if ci < len(rec) {
				row.OldValues = append(row.OldValues, rec[ci])
			} else {
				row.OldValues = append(row.OldValues, "")
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Write renders rows as always-quoted CSV with the canonical header.
// extraOldValueCols controls how many trailing "Old Value" columns are
// written, beyond the first (for diffs against more than one target).
func Write(w io.Writer, rows []Row, extraOldValueCols int) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = false

	cols := append([]string{}, header...)
	for i := 0; i < extraOldValueCols; i++ {
		cols = append(cols, "Old Value")
	}
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("difflog: writing header: %w", err)
	}

	for _, r := range rows {
		rec := []string{
			r.DeveloperWorkLogName, r.RequestTimeStamp, r.WorkTeam, r.DeveloperName,
			r.UserStory, r.MergeAction, r.Metadata, r.Path,
			r.L1Key, r.L2Key, r.L3Key, r.L4Key, r.NewValue,
		}
		for i := 0; i < 1+extraOldValueCols; i++ {
			if i < len(r.OldValues) {
				rec = append(rec, r.OldValues[i])
			} else {
				rec = append(rec, "")
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("difflog: writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// GroupByPathTimestamp groups rows for a merge run: path -> timestamp ->
// rows, with rows inside each timestamp bucket kept in their original
// relative order (spec.md §4.6). Callers iterate timestamps in ascending
// textual order per path.
func GroupByPathTimestamp(rows []Row) map[string]map[string][]Row {
	out := make(map[string]map[string][]Row)
	for _, r := range rows {
		byTS, ok := out[r.Path]
		if !ok {
			byTS = make(map[string][]Row)
			out[r.Path] = byTS
		}
		byTS[r.RequestTimeStamp] = append(byTS[r.RequestTimeStamp], r)
	}
	return out
}

// SortedTimestamps returns byTS's keys in ascending textual order.
func SortedTimestamps(byTS map[string][]Row) []string {
	out := make([]string, 0, len(byTS))
	for ts := range byTS {
		out = append(out, ts)
	}
	sort.Strings(out)
	return out
}
