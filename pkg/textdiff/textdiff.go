// Package textdiff computes word-level diffs between two text revisions.
//
// The diff is a minimal edit script produced by Myers' O(ND) algorithm over
// word and whitespace tokens. Concatenating the equal and delete segments
// reproduces the old text exactly; concatenating the equal and insert
// segments reproduces the new text exactly.
package textdiff

import (
	"errors"
	"strings"
)

// OpType classifies a diff segment.
type OpType string

const (
	OpEqual  OpType = "equal"
	OpDelete OpType = "delete"
	OpInsert OpType = "insert"
)

// DefaultMaxContentBytes caps the size of either input text.
const DefaultMaxContentBytes = 1 << 20

// ErrContentTooLarge is returned when an input exceeds the configured ceiling.
var ErrContentTooLarge = errors.New("content exceeds maximum size")

// Segment is a maximal run of tokens sharing one operation type.
type Segment struct {
	Type    OpType `json:"type"`
	Content string `json:"content"`
}

// Stats summarizes word-level changes. Whitespace-only changes are not counted.
type Stats struct {
	WordsAdded     int `json:"words_added"`
	WordsRemoved   int `json:"words_removed"`
	WordsUnchanged int `json:"words_unchanged"`
	TotalChanges   int `json:"total_changes"`
}

// Result is the outcome of comparing two revisions.
type Result struct {
	Diff  []Segment `json:"diff"`
	Stats Stats     `json:"stats"`
}

// SideBySide partitions a diff into left (old) and right (new) streams for
// two-pane rendering. It is a projection of the flat diff, never a recompute.
type SideBySide struct {
	Left  []Segment `json:"left"`
	Right []Segment `json:"right"`
}

// Engine compares text revisions. Engines are stateless and safe for
// concurrent use.
type Engine struct {
	maxContentBytes int
}

// NewEngine creates an engine with the given input size ceiling. A ceiling
// of zero or less falls back to DefaultMaxContentBytes.
func NewEngine(maxContentBytes int) *Engine {
	if maxContentBytes <= 0 {
		maxContentBytes = DefaultMaxContentBytes
	}
	return &Engine{maxContentBytes: maxContentBytes}
}

// Compare computes the word-level diff from oldText to newText.
// It is a pure function: identical inputs always produce identical results.
// Two empty inputs yield an empty diff with zero stats.
func (e *Engine) Compare(oldText, newText string) (*Result, error) {
	if len(oldText) > e.maxContentBytes || len(newText) > e.maxContentBytes {
		return nil, ErrContentTooLarge
	}

	a := tokenize(oldText)
	b := tokenize(newText)

	ops := diffTokens(a, b)
	segments := coalesce(ops)

	result := &Result{Diff: segments}
	for _, op := range ops {
		if !op.tok.word {
			continue
		}
		switch op.kind {
		case opEqual:
			result.Stats.WordsUnchanged++
		case opDelete:
			result.Stats.WordsRemoved++
		case opInsert:
			result.Stats.WordsAdded++
		}
	}
	result.Stats.TotalChanges = result.Stats.WordsAdded + result.Stats.WordsRemoved

	return result, nil
}

// Split partitions the diff for side-by-side rendering: the left stream
// carries equal and delete segments, the right stream equal and insert
// segments.
func (r *Result) Split() SideBySide {
	var sbs SideBySide
	for _, seg := range r.Diff {
		switch seg.Type {
		case OpEqual:
			sbs.Left = append(sbs.Left, seg)
			sbs.Right = append(sbs.Right, seg)
		case OpDelete:
			sbs.Left = append(sbs.Left, seg)
		case OpInsert:
			sbs.Right = append(sbs.Right, seg)
		}
	}
	return sbs
}

// coalesce merges consecutive operations of the same kind into segments.
// Within each changed block deletions are emitted before insertions, which
// keeps the number of runs minimal without reordering either side.
func coalesce(ops []op) []Segment {
	segments := []Segment{}
	i := 0
	for i < len(ops) {
		if ops[i].kind == opEqual {
			var sb strings.Builder
			for i < len(ops) && ops[i].kind == opEqual {
				sb.WriteString(ops[i].tok.text)
				i++
			}
			segments = append(segments, Segment{Type: OpEqual, Content: sb.String()})
			continue
		}

		// Changed block: gather all deletes and inserts until the next
		// equal run, preserving per-side order.
		var del, ins strings.Builder
		for i < len(ops) && ops[i].kind != opEqual {
			if ops[i].kind == opDelete {
				del.WriteString(ops[i].tok.text)
			} else {
				ins.WriteString(ops[i].tok.text)
			}
			i++
		}
		if del.Len() > 0 {
			segments = append(segments, Segment{Type: OpDelete, Content: del.String()})
		}
		if ins.Len() > 0 {
			segments = append(segments, Segment{Type: OpInsert, Content: ins.String()})
		}
	}
	return segments
}
