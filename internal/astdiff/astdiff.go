// Package astdiff wraps an external structural-diff tool and decodes its
// JSON edit script into typed actions and node matches.
package astdiff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Verb is the kind of edit operation in a structural diff.
type Verb int

const (
	OpInsert Verb = iota
	OpDelete
	OpUpdate
	OpMove
)

func (v Verb) String() string {
	switch v {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpUpdate:
		return "update"
	case OpMove:
		return "move"
	}
	return "unknown"
}

// Scope says whether an operation applies to a single node or a whole subtree.
type Scope int

const (
	ScopeNode Scope = iota
	ScopeTree
)

func (s Scope) String() string {
	if s == ScopeTree {
		return "tree"
	}
	return "node"
}

// Op is a closed verb+scope pair, one per action string the tool emits.
type Op struct {
	Verb  Verb
	Scope Scope
}

// ParseOp decodes an action string such as "insert-node" or "update-tree".
func ParseOp(s string) (Op, error) {
	verb, scope, found := strings.Cut(strings.ToLower(s), "-")
	op := Op{}
	switch verb {
	case "insert":
		op.Verb = OpInsert
	case "delete":
		op.Verb = OpDelete
	case "update":
		op.Verb = OpUpdate
	case "move":
		op.Verb = OpMove
	default:
		return Op{}, fmt.Errorf("unknown action verb %q", s)
	}
	if found && scope == "tree" {
		op.Scope = ScopeTree
	}
	return op, nil
}

var spanRe = regexp.MustCompile(`\[(\d+),(\d+)\]`)

// NodeRef is a labeled node with a half-open character-offset span [Start,End).
type NodeRef struct {
	Label string
	Start int
	End   int
}

// Contains reports whether the given span lies fully inside this node's span.
func (n NodeRef) Contains(start, end int) bool {
	return n.Start <= start && end <= n.End
}

// ParseNodeRef decodes a descriptor of the form "type_label [start,end]".
func ParseNodeRef(s string) (NodeRef, error) {
	loc := spanRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return NodeRef{}, fmt.Errorf("node descriptor %q has no position span", s)
	}
	start, _ := strconv.Atoi(s[loc[2]:loc[3]])
	end, _ := strconv.Atoi(s[loc[4]:loc[5]])
	return NodeRef{
		Label: strings.TrimSpace(s[:loc[0]]),
		Start: start,
		End:   end,
	}, nil
}

// Action is one edit operation. Parent is set for insert and update
// operations and points at the enclosing node in the other file version.
type Action struct {
	Op     Op
	Tree   NodeRef
	Parent *NodeRef
}

// Match links a pre-version node span to its post-version counterpart.
type Match struct {
	Src  NodeRef
	Dest NodeRef
}

// Diff is the decoded structural diff between two file versions.
type Diff struct {
	Actions []Action
	Matches []Match
}

// Grammar selects the tool's language backend and the temp-file suffix the
// backend expects for language detection.
type Grammar struct {
	Backend string
	Suffix  string
}

// ExtractionError means the tool failed or produced no usable output.
type ExtractionError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s extraction failed: %v: %s", e.Tool, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s extraction failed: %v", e.Tool, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor runs the structural-diff tool as a subprocess per file pair.
type Extractor struct {
	tool string
	log  *zap.SugaredLogger
}

func NewExtractor(tool string, log *zap.SugaredLogger) *Extractor {
	return &Extractor{tool: tool, log: log}
}

// Extract diffs two file snapshots. Both snapshots are written to temporary
// files which are removed on every return path.
func (e *Extractor) Extract(ctx context.Context, pre, post string, g Grammar) (*Diff, error) {
	preFile, err := writeTemp(pre, g.Suffix)
	if err != nil {
		return nil, err
	}
	defer os.Remove(preFile)

	postFile, err := writeTemp(post, g.Suffix)
	if err != nil {
		return nil, err
	}
	defer os.Remove(postFile)

	cmd := exec.CommandContext(ctx, e.tool, "textdiff", "-f", "json", "-g", g.Backend, preFile, postFile)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &ExtractionError{Tool: e.tool, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	if stdout.Len() == 0 {
		return nil, &ExtractionError{
			Tool:   e.tool,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    fmt.Errorf("empty output"),
		}
	}

	diff, err := Decode(stdout.Bytes())
	if err != nil {
		return nil, &ExtractionError{Tool: e.tool, Err: err}
	}
	e.log.Debugw("structural diff extracted", "actions", len(diff.Actions), "matches", len(diff.Matches))
	return diff, nil
}

type rawAction struct {
	Action string `json:"action"`
	Tree   string `json:"tree"`
	Parent string `json:"parent"`
}

type rawMatch struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
}

type rawDiff struct {
	Actions []rawAction `json:"actions"`
	Matches []rawMatch  `json:"matches"`
}

// Decode parses the tool's JSON output. The actions array is required;
// matches are optional.
func Decode(data []byte) (*Diff, error) {
	var raw rawDiff
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode diff output: %w", err)
	}
	if raw.Actions == nil {
		return nil, fmt.Errorf("diff output has no actions array")
	}

	diff := &Diff{Actions: make([]Action, 0, len(raw.Actions))}
	for _, ra := range raw.Actions {
		op, err := ParseOp(ra.Action)
		if err != nil {
			return nil, err
		}
		tree, err := ParseNodeRef(ra.Tree)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", ra.Action, err)
		}
		action := Action{Op: op, Tree: tree}
		if ra.Parent != "" {
			parent, err := ParseNodeRef(ra.Parent)
			if err != nil {
				return nil, fmt.Errorf("action %q parent: %w", ra.Action, err)
			}
			action.Parent = &parent
		}
		diff.Actions = append(diff.Actions, action)
	}

	for _, rm := range raw.Matches {
		src, err := ParseNodeRef(rm.Src)
		if err != nil {
			return nil, fmt.Errorf("match: %w", err)
		}
		match := Match{Src: src}
		if rm.Dest != "" {
			if dest, err := ParseNodeRef(rm.Dest); err == nil {
				match.Dest = dest
			}
		}
		diff.Matches = append(diff.Matches, match)
	}

	return diff, nil
}

func writeTemp(content, suffix string) (string, error) {
	f, err := os.CreateTemp("", "astdiff-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}
