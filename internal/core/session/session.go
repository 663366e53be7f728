package session

import (
	"fmt"

	"github.com/neilberkman/cyclerider/internal/core/cycles"
	"github.com/neilberkman/cyclerider/internal/core/importer"
	"github.com/neilberkman/cyclerider/internal/core/models"
	"github.com/neilberkman/cyclerider/pkg/novaexport"
)

// Session owns the imported recordings and the operator's selection. Each
// import replaces the table wholesale. Derived results are never cached.
type Session struct {
	table       map[string]*novaexport.Recording
	ordered     []*novaexport.Recording
	selected    map[string]bool
	chargeFirst bool
	failures    []importer.Failure
}

func New(chargeFirst bool) *Session {
	return &Session{
		table:       map[string]*novaexport.Recording{},
		selected:    map[string]bool{},
		chargeFirst: chargeFirst,
	}
}

// Key identifies a recording within the session.
func Key(rec *novaexport.Recording) string {
	return rec.Path
}

// Replace swaps the table for the recordings of batch and selects all of them.
// A path imported twice in one batch keeps the later copy.
func (s *Session) Replace(batch importer.Batch) {
	s.table = make(map[string]*novaexport.Recording, len(batch.Recordings))
	var recs []*novaexport.Recording
	for _, rec := range batch.Recordings {
		key := Key(rec)
		if _, dup := s.table[key]; dup {
			for i, r := range recs {
				if Key(r) == key {
					recs[i] = rec
				}
			}
		} else {
			recs = append(recs, rec)
		}
		s.table[key] = rec
	}

	s.failures = batch.Failures
	s.selected = make(map[string]bool, len(recs))
	for _, rec := range recs {
		s.selected[Key(rec)] = true
	}
	s.ordered = cycles.Sort(recs, s.chargeFirst)
}

// Clear drops every recording.
func (s *Session) Clear() {
	s.Replace(importer.Batch{})
}

// Failures are the files the last import rejected.
func (s *Session) Failures() []importer.Failure {
	return s.failures
}

func (s *Session) ChargeFirst() bool {
	return s.chargeFirst
}

// SetChargeFirst changes the tie-break between files with the same number and
// recomputes the display order.
func (s *Session) SetChargeFirst(chargeFirst bool) {
	s.chargeFirst = chargeFirst
	s.ordered = cycles.Sort(s.ordered, chargeFirst)
}

// Ordered returns every recording in display order.
func (s *Session) Ordered() []*novaexport.Recording {
	return s.ordered
}

func (s *Session) Len() int {
	return len(s.ordered)
}

func (s *Session) Get(key string) (*novaexport.Recording, bool) {
	rec, ok := s.table[key]
	return rec, ok
}

// Select replaces the selection with keys. Unknown keys are an error and leave
// the selection untouched.
func (s *Session) Select(keys ...string) error {
	next := make(map[string]bool, len(keys))
	for _, key := range keys {
		if _, ok := s.table[key]; !ok {
			return fmt.Errorf("no recording %q in session", key)
		}
		next[key] = true
	}
	s.selected = next
	return nil
}

func (s *Session) SelectAll() {
	s.selected = make(map[string]bool, len(s.table))
	for key := range s.table {
		s.selected[key] = true
	}
}

func (s *Session) SelectNone() {
	s.selected = map[string]bool{}
}

// Toggle flips one recording in or out of the selection.
func (s *Session) Toggle(key string) {
	if _, ok := s.table[key]; !ok {
		return
	}
	if s.selected[key] {
		delete(s.selected, key)
	} else {
		s.selected[key] = true
	}
}

func (s *Session) IsSelected(key string) bool {
	return s.selected[key]
}

// Selected returns the selected recordings in display order.
func (s *Session) Selected() []*novaexport.Recording {
	var out []*novaexport.Recording
	for _, rec := range s.ordered {
		if s.selected[Key(rec)] {
			out = append(out, rec)
		}
	}
	return out
}

// Analyze derives cycles from the current selection.
func (s *Session) Analyze(params models.Params) cycles.Result {
	return cycles.Derive(s.Selected(), params)
}
