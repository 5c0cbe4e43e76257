// Package composition holds the per-session editing state of the host input
// engine: the input string, the segment stack with its menus, option values
// and the notifications fired when a candidate is selected.
package composition

import (
	"imeswitch/internal/menu"
)

// Segment is a span of the composition carrying selection state and,
// optionally, a candidate menu.
type Segment struct {
	Start         int
	End           int
	Menu          *menu.Menu
	SelectedIndex int
	Prompt        string
	Tags          map[string]struct{}
	Selected      bool
}

// NewSegment creates a segment covering [start, end).
func NewSegment(start, end int) *Segment {
	return &Segment{Start: start, End: end, Tags: make(map[string]struct{})}
}

// AddTag marks the segment with a tag.
func (s *Segment) AddTag(tag string) {
	if s.Tags == nil {
		s.Tags = make(map[string]struct{})
	}
	s.Tags[tag] = struct{}{}
}

// HasTag reports whether the segment carries tag.
func (s *Segment) HasTag(tag string) bool {
	_, ok := s.Tags[tag]
	return ok
}

// GetCandidateAt returns the realized menu candidate at index, or nil.
func (s *Segment) GetCandidateAt(index int) menu.Candidate {
	if s.Menu == nil {
		return nil
	}
	return s.Menu.GetCandidateAt(index)
}

// GetSelectedCandidate returns the candidate at SelectedIndex, or nil.
func (s *Segment) GetSelectedCandidate() menu.Candidate {
	return s.GetCandidateAt(s.SelectedIndex)
}

// Composition is the ordered segment stack. The last segment is the one the
// user is working on.
type Composition struct {
	segments []*Segment
}

// Empty reports whether there are no segments.
func (c *Composition) Empty() bool {
	return len(c.segments) == 0
}

// Len returns the number of segments.
func (c *Composition) Len() int {
	return len(c.segments)
}

// Back returns the last segment, or nil when the composition is empty.
func (c *Composition) Back() *Segment {
	if len(c.segments) == 0 {
		return nil
	}
	return c.segments[len(c.segments)-1]
}

// AddSegment pushes seg onto the stack.
func (c *Composition) AddSegment(seg *Segment) {
	c.segments = append(c.segments, seg)
}

// Segments returns the segments in order. The slice must not be modified.
func (c *Composition) Segments() []*Segment {
	return c.segments
}

// Reset drops every segment.
func (c *Composition) Reset() {
	c.segments = nil
}
