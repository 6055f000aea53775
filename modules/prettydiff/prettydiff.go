// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package prettydiff renders difflog rows as unified diff hunks for console
// output, reusing the line-diff primitives in modules/diferenco.
package prettydiff

import (
	"io"
	"strings"

	"github.com/antgroup/metasync/modules/diferenco"
	"github.com/antgroup/metasync/modules/diferenco/color"
	"github.com/antgroup/metasync/modules/difflog"
)

// Options controls how rows are rendered.
type Options struct {
	UseColor bool
	// Branch is the label used for the "to" side of each hunk (the
	// branch the row's NewValue came from).
	Branch string
}

// rowPath builds the synthetic path diff headers reference for a row,
// combining the file path with its diff-key levels so CreateFile/UpdateFile
// rows (no L1-L4) and nested item rows both get a stable, readable name.
func rowPath(row difflog.Row) string {
	parts := []string{row.Path}
	for _, k := range row.Keys() {
		if k != "" {
			parts = append(parts, k)
		}
	}
	return strings.Join(parts, "/")
}

// Render writes one unified diff hunk set per row to w, in row order.
func Render(w io.Writer, rows []difflog.Row, opts Options) error {
	enc := diferenco.NewUnifiedEncoder(w)
	if opts.UseColor {
		enc.SetColor(color.NewColorConfig())
	}
	for _, row := range rows {
		u := rowUnified(row, opts)
		if u == nil {
			continue
		}
		if err := enc.Encode([]*diferenco.Unified{u}); err != nil {
			return err
		}
	}
	return nil
}

func rowUnified(row difflog.Row, opts Options) *diferenco.Unified {
	path := rowPath(row)
	old, new_ := row.OldValue(), row.NewValue
	switch row.MergeAction {
	case difflog.ActionCreateFile, difflog.ActionCreateItem:
		old = ""
	case difflog.ActionDeleteFile, difflog.ActionDeleteItem:
		new_ = ""
	}
	if old == new_ {
		return nil
	}
	from := &diferenco.File{Path: path}
	to := &diferenco.File{Path: path}
	if old == "" {
		from = nil
	}
	if new_ == "" {
		to = nil
	}
	u := diferenco.UnifiedDiff(from, to, old, new_)
	u.From, u.To = from, to
	u.Message = summary(row, opts)
	return u
}

func summary(row difflog.Row, opts Options) string {
	branch := opts.Branch
	if branch == "" {
		branch = "target"
	}
	return row.MergeAction + " " + row.Metadata + " (" + branch + ")"
}
