// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mdtree

import (
	"fmt"
	"strings"

	"github.com/antgroup/metasync/modules/difflog"
)

// FileAction is a whole-file merge action (Create/Update/Delete File),
// applied outside the structural tree (spec.md §4.6).
type FileAction struct {
	Kind       string // one of difflog.ActionCreateFile/UpdateFile/DeleteFile
	NewContent string // Create/Update File: the replacement file content
}

// MergeResult is the outcome of planning one target file's merge: a
// possibly-nil whole-file action, a possibly-nil structural merge-action
// tree (nil when there is nothing to apply at the item level), and
// diagnostics that never abort the run (spec.md §7).
type MergeResult struct {
	File   *FileAction
	Root   *MergeNode
	Notes  []string
	Errors []error
}

// BuildMergeTree plans one target file's merge from its rows, already
// ordered ascending by request timestamp within the file (spec.md §4.6,
// "Rows are sorted within a path by timestamp ascending"). Use
// difflog.GroupByPathTimestamp + difflog.SortedTimestamps to build this
// order per path before calling BuildMergeTree.
func BuildMergeTree(rows []difflog.Row) MergeResult {
	res := MergeResult{Root: NewMergeNode()}
	fileUpdated := false

	for _, row := range rows {
		switch row.MergeAction {
		case difflog.ActionCreateFile, difflog.ActionUpdateFile:
			if fileUpdated {
				res.Notes = append(res.Notes, fmt.Sprintf("%s: already updated", row.Path))
				continue
			}
			res.File = &FileAction{Kind: row.MergeAction, NewContent: row.NewValue}
			fileUpdated = true

		case difflog.ActionDeleteFile:
			if fileUpdated {
				res.Notes = append(res.Notes, fmt.Sprintf("%s: already updated", row.Path))
				continue
			}
			res.File = &FileAction{Kind: row.MergeAction}
			fileUpdated = true

		case difflog.ActionCreateItem:
			if err := planCreateItem(res.Root, row); err != nil {
				res.Errors = append(res.Errors, err)
			}

		case difflog.ActionUpdateItem:
			if err := planUpdateItem(res.Root, row); err != nil {
				res.Errors = append(res.Errors, err)
			}

		case difflog.ActionDeleteItem:
			if err := planDeleteItem(res.Root, row); err != nil {
				res.Errors = append(res.Errors, err)
			}

		default:
			res.Errors = append(res.Errors, fmt.Errorf("merge: %s: unknown merge action %q", row.Path, row.MergeAction))
		}
	}
	return res
}

// structuralPath returns keys' `NAME=VALUE` levels with any trailing bare
// sentinel levels (e.g. #CONTENTS#, #PARAMS#) removed: those mark "whole
// node content", not a further nesting level (spec.md §4.6 "Path levels
// encode either SNAME=SVALUE ... or just SVALUE").
func structuralPath(keys []string) []string {
	for len(keys) > 0 {
		if strings.Contains(keys[len(keys)-1], "=") {
			break
		}
		keys = keys[:len(keys)-1]
	}
	return keys
}

// navigate descends root through path's (sectionName, sectionKey) chain,
// creating nodes as needed. A bare (nameless) level is accepted per
// spec.md §4.6 with an empty section name.
func navigate(root *MergeNode, path []string) *MergeNode {
	node := root
	for _, level := range path {
		name, key, ok := splitSectionLevel(level)
		if !ok {
			name, key = "", level
		}
		node = node.Child(name, key)
	}
	return node
}

func planCreateItem(root *MergeNode, row difflog.Row) error {
	path := structuralPath(row.Keys())
	if len(path) == 0 {
		return fmt.Errorf("merge: %s: Create Item has no structural path", row.Path)
	}
	parent := navigate(root, path[:len(path)-1])
	name, key, ok := splitSectionLevel(path[len(path)-1])
	if !ok {
		return fmt.Errorf("merge: %s: Create Item target %q has no section name", row.Path, path[len(path)-1])
	}
	parent.Creates = append(parent.Creates, CreateEntry{SectionName: name, SortKey: key, Content: row.NewValue})
	return nil
}

func planUpdateItem(root *MergeNode, row difflog.Row) error {
	path := structuralPath(row.Keys())
	if len(path) == 0 {
		return fmt.Errorf("merge: %s: Update Item has no structural path", row.Path)
	}
	node := navigate(root, path)
	v := row.NewValue
	node.Change = &v
	return nil
}

func planDeleteItem(root *MergeNode, row difflog.Row) error {
	path := structuralPath(row.Keys())
	if len(path) == 0 {
		return fmt.Errorf("merge: %s: Delete Item has no structural path", row.Path)
	}
	navigate(root, path).Delete = true
	return nil
}
