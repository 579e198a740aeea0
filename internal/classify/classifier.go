// Package classify decides whether a structural diff touches type-annotation
// syntax and where the touched lines live.
package classify

import (
	"strings"

	"github.com/typetrace/typetrace/internal/astdiff"
)

// ChangeKind says how a type annotation was edited.
type ChangeKind string

const (
	KindAdded   ChangeKind = "added"
	KindRemoved ChangeKind = "removed"
	KindChanged ChangeKind = "changed"
)

// Edit is one relevant change: the file version it appears in, the 1-based
// line in that version, and the kind of change.
type Edit struct {
	File string
	Line int
	Kind ChangeKind
}

// Input carries both file versions for one changed file.
type Input struct {
	PreName  string
	PostName string
	PreText  string
	PostText string
	Language Language
}

// Classifier applies a per-language relevance table to structural diffs.
type Classifier struct {
	tables map[Language]Table
}

func NewClassifier() *Classifier {
	return &Classifier{tables: DefaultTables()}
}

// WithTable overrides the relevance table for one language.
func (c *Classifier) WithTable(lang Language, t Table) *Classifier {
	c.tables[lang] = t
	return c
}

// Classify returns the ordered list of relevant edits in a diff, or nil when
// the diff never touches type-annotation syntax.
//
// Inserted and updated nodes are anchored on their enclosing parent span in
// the post-version text; removals (and moves) are anchored on the removed
// node's own span in the pre-version text.
func (c *Classifier) Classify(diff *astdiff.Diff, in Input) []Edit {
	table, ok := c.tables[in.Language]
	if !ok {
		return nil
	}

	var edits []Edit
	for _, action := range diff.Actions {
		added := action.Op.Verb == astdiff.OpInsert
		updated := action.Op.Verb == astdiff.OpUpdate

		kind := KindRemoved
		if added {
			kind = KindAdded
		} else if updated {
			kind = KindChanged
		}

		anchor := action.Tree
		if (added || updated) && action.Parent != nil {
			anchor = *action.Parent
		}

		side := in.PreText
		file := in.PreName
		if added || updated {
			side = in.PostText
			file = in.PostName
		}

		relevant := table.Relevant(action.Tree.Label)
		if !relevant {
			relevant = insideTypeTree(diff.Matches, table, anchor)
		}
		if !relevant {
			continue
		}

		edits = append(edits, Edit{File: file, Line: lineAt(side, anchor.Start), Kind: kind})
	}

	return edits
}

// insideTypeTree reports whether the anchor span is fully contained in a
// matched pre-version subtree whose label is type-relevant. This catches
// edits nested inside an annotation, e.g. changing one generic argument.
func insideTypeTree(matches []astdiff.Match, table Table, anchor astdiff.NodeRef) bool {
	for _, m := range matches {
		if table.Relevant(m.Src.Label) && m.Src.Contains(anchor.Start, anchor.End) {
			return true
		}
	}
	return false
}

// lineAt converts a character offset into a 1-based line number.
func lineAt(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\n") + 1
}
