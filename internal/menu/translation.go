package menu

// Translation is a pull source of candidates. Peek returns the candidate at
// the head without consuming it; Next advances past it. Once Exhausted
// reports true the translation never produces again.
type Translation interface {
	Next() bool
	Peek() Candidate
	Exhausted() bool
}

// FifoTranslation serves a fixed list of candidates in order. Candidates may
// be appended until the list has been drained.
type FifoTranslation struct {
	candidates []Candidate
	cursor     int
}

// NewFifoTranslation creates a translation over the given candidates.
func NewFifoTranslation(candidates ...Candidate) *FifoTranslation {
	return &FifoTranslation{candidates: candidates}
}

// Append adds a candidate at the tail.
func (t *FifoTranslation) Append(c Candidate) {
	t.candidates = append(t.candidates, c)
}

// Size returns the number of candidates not yet consumed.
func (t *FifoTranslation) Size() int {
	return len(t.candidates) - t.cursor
}

func (t *FifoTranslation) Next() bool {
	if t.Exhausted() {
		return false
	}
	t.cursor++
	return true
}

func (t *FifoTranslation) Peek() Candidate {
	if t.Exhausted() {
		return nil
	}
	return t.candidates[t.cursor]
}

func (t *FifoTranslation) Exhausted() bool {
	return t.cursor >= len(t.candidates)
}

// FuncTranslation produces candidates from a generator until it reports
// false. Useful when candidates are expensive to build and only a prefix of
// them is ever shown.
type FuncTranslation struct {
	gen  func() (Candidate, bool)
	head Candidate
	done bool
}

// NewFuncTranslation wraps a generator.
func NewFuncTranslation(gen func() (Candidate, bool)) *FuncTranslation {
	t := &FuncTranslation{gen: gen}
	t.fill()
	return t
}

func (t *FuncTranslation) fill() {
	if t.done {
		return
	}
	c, ok := t.gen()
	if !ok || c == nil {
		t.done = true
		t.head = nil
		return
	}
	t.head = c
}

func (t *FuncTranslation) Next() bool {
	if t.done {
		return false
	}
	t.fill()
	return true
}

func (t *FuncTranslation) Peek() Candidate {
	return t.head
}

func (t *FuncTranslation) Exhausted() bool {
	return t.done
}
