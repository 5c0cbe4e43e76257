// Package menu implements the lazily realized candidate menu shown while the
// switcher is active.
package menu

// Candidate is a selectable menu entry.
type Candidate interface {
	// Type tags the variant, e.g. "schema" or "switch".
	Type() string
	Text() string
	Comment() string
}

// SimpleCandidate is a plain entry with no behaviour attached.
type SimpleCandidate struct {
	Kind        string
	TextValue   string
	CommentText string
}

// NewSimpleCandidate creates a plain candidate.
func NewSimpleCandidate(kind, text, comment string) *SimpleCandidate {
	return &SimpleCandidate{Kind: kind, TextValue: text, CommentText: comment}
}

func (c *SimpleCandidate) Type() string    { return c.Kind }
func (c *SimpleCandidate) Text() string    { return c.TextValue }
func (c *SimpleCandidate) Comment() string { return c.CommentText }
