package menu

// Menu concatenates translations in the order they were added and realizes
// candidates on demand. Realized candidates are never dropped, so indexes
// stay stable for the lifetime of the menu.
type Menu struct {
	translations []Translation
	candidates   []Candidate
}

// New creates an empty menu.
func New() *Menu {
	return &Menu{}
}

// AddTranslation appends a source after every previously added one. Nil and
// already exhausted translations are ignored.
func (m *Menu) AddTranslation(t Translation) {
	if t == nil || t.Exhausted() {
		return
	}
	m.translations = append(m.translations, t)
}

// Prepare realizes candidates until n are available or every source is
// exhausted, and returns the realized count. Asking for fewer candidates than
// already realized is a no-op.
func (m *Menu) Prepare(n int) int {
	for len(m.candidates) < n && len(m.translations) > 0 {
		t := m.translations[0]
		if t.Exhausted() {
			m.translations = m.translations[1:]
			continue
		}
		c := t.Peek()
		t.Next()
		if c == nil {
			continue
		}
		m.candidates = append(m.candidates, c)
	}
	return len(m.candidates)
}

// GetCandidateAt returns the realized candidate at index, or nil when index
// is outside the realized range. It never realizes further candidates.
func (m *Menu) GetCandidateAt(index int) Candidate {
	if index < 0 || index >= len(m.candidates) {
		return nil
	}
	return m.candidates[index]
}

// CandidateCount returns the number of realized candidates.
func (m *Menu) CandidateCount() int {
	return len(m.candidates)
}

// Empty reports whether the menu can produce no candidate at all.
func (m *Menu) Empty() bool {
	return m.Prepare(1) == 0
}

// Page is a window of candidates.
type Page struct {
	PageSize   int
	PageNo     int
	IsLastPage bool
	Candidates []Candidate
}

// CreatePage realizes enough candidates to fill page pageNo and returns it,
// or nil when the page would be empty.
func (m *Menu) CreatePage(pageSize, pageNo int) *Page {
	if pageSize <= 0 || pageNo < 0 {
		return nil
	}
	start := pageSize * pageNo
	end := start + pageSize
	// one extra to learn whether a following page exists
	available := m.Prepare(end + 1)
	if available <= start {
		return nil
	}
	last := available <= end
	if end > available {
		end = available
	}
	page := &Page{
		PageSize:   pageSize,
		PageNo:     pageNo,
		IsLastPage: last,
		Candidates: make([]Candidate, end-start),
	}
	copy(page.Candidates, m.candidates[start:end])
	return page
}
