package console

import (
	"sort"

	"github.com/kalambet/qareview/internal/kb"
)

// Snapshot is segment text as last synced with the backend.
type Snapshot struct {
	Question string
	Answer   string
}

// Edit is an unsaved change to an unreviewed segment.
type Edit struct {
	Question   string
	Answer     string
	DocumentID string
	Original   Snapshot
}

// EditTracker records unsaved unreviewed edits. An entry exists exactly
// when the current text differs from the last synced text.
type EditTracker struct {
	entries map[string]Edit
}

func NewEditTracker() *EditTracker {
	return &EditTracker{entries: make(map[string]Edit)}
}

// Sync records the current text of seg and reports whether it is now dirty.
func (t *EditTracker) Sync(seg kb.Segment, question, answer string) bool {
	if question == seg.Question && answer == seg.Answer {
		delete(t.entries, seg.ID)
		return false
	}
	t.entries[seg.ID] = Edit{
		Question:   question,
		Answer:     answer,
		DocumentID: seg.DocumentID,
		Original:   Snapshot{Question: seg.Question, Answer: seg.Answer},
	}
	return true
}

func (t *EditTracker) Get(id string) (Edit, bool) {
	e, ok := t.entries[id]
	return e, ok
}

func (t *EditTracker) Drop(id string) {
	delete(t.entries, id)
}

func (t *EditTracker) Len() int {
	return len(t.entries)
}

func (t *EditTracker) Clear() {
	clear(t.entries)
}

// TrackedEdit pairs an edit with its segment id.
type TrackedEdit struct {
	SegmentID string
	Edit
}

// Entries returns every tracked edit ordered by segment id.
func (t *EditTracker) Entries() []TrackedEdit {
	out := make([]TrackedEdit, 0, len(t.entries))
	for id, e := range t.entries {
		out = append(out, TrackedEdit{SegmentID: id, Edit: e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SegmentID < out[j].SegmentID })
	return out
}
