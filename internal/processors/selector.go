package processors

import (
	"imeswitch/internal/component"
	"imeswitch/internal/composition"
	"imeswitch/internal/keyevent"
)

const (
	// PageSizeKey is the settings path of the menu page size.
	PageSizeKey = "menu/page_size"

	// DefaultPageSize applies when no page size is configured.
	DefaultPageSize = 5
)

// Selector moves the highlight through the menu of the last segment and
// selects candidates by their number on the current page.
type Selector struct {
	engine component.Engine
}

// NewSelector creates a selector bound to engine.
func NewSelector(engine component.Engine) *Selector {
	return &Selector{engine: engine}
}

// PageSize returns the configured page size.
func (p *Selector) PageSize() int {
	if src := p.engine.Config(); src != nil {
		if n, ok := src.GetInt(PageSizeKey); ok && n > 0 {
			return n
		}
	}
	return DefaultPageSize
}

func (p *Selector) ProcessKeyEvent(ev keyevent.KeyEvent) component.ProcessResult {
	if ev.Release() || ev.Ctrl() || ev.Alt() || ev.Super() {
		return component.Noop
	}
	ctx := p.engine.Context()
	if ctx == nil {
		return component.Noop
	}
	seg := ctx.Composition().Back()
	if seg == nil || seg.Menu == nil {
		return component.Noop
	}

	switch ev.Keycode {
	case keyevent.XKUp, keyevent.XKLeft:
		p.moveTo(seg, seg.SelectedIndex-1)
	case keyevent.XKDown, keyevent.XKRight:
		p.moveTo(seg, seg.SelectedIndex+1)
	case keyevent.XKPageUp, keyevent.XKMinus:
		p.pageUp(seg)
	case keyevent.XKPageDown, keyevent.XKEqual:
		p.pageDown(seg)
	case keyevent.XKHome:
		p.moveTo(seg, 0)
	case keyevent.XKEnd:
		p.end(seg)
	default:
		if ev.Keycode >= keyevent.XK0 && ev.Keycode <= keyevent.XK9 {
			return p.selectOnPage(ctx, seg, digitIndex(ev.Keycode))
		}
		return component.Noop
	}
	return component.Accepted
}

// moveTo highlights index when it is a candidate; otherwise the highlight
// stays where it is.
func (p *Selector) moveTo(seg *composition.Segment, index int) {
	if index < 0 {
		return
	}
	if seg.Menu.Prepare(index+1) <= index {
		return
	}
	seg.SelectedIndex = index
}

func (p *Selector) pageUp(seg *composition.Segment) {
	index := seg.SelectedIndex - p.PageSize()
	if index < 0 {
		index = 0
	}
	seg.SelectedIndex = index
	seg.AddTag("paging")
}

// pageDown keeps the offset within the page. On a short last page the
// highlight lands on the last candidate.
func (p *Selector) pageDown(seg *composition.Segment) {
	size := p.PageSize()
	index := seg.SelectedIndex + size
	n := seg.Menu.Prepare(index + 1)
	if n <= index {
		index = n - 1
	}
	if index/size == seg.SelectedIndex/size {
		return
	}
	seg.SelectedIndex = index
	seg.AddTag("paging")
}

// end highlights the last candidate of the current page.
func (p *Selector) end(seg *composition.Segment) {
	size := p.PageSize()
	last := (seg.SelectedIndex/size+1)*size - 1
	n := seg.Menu.Prepare(last + 1)
	if n <= last {
		last = n - 1
	}
	if last >= 0 {
		seg.SelectedIndex = last
	}
}

func (p *Selector) selectOnPage(ctx component.Context, seg *composition.Segment, i int) component.ProcessResult {
	size := p.PageSize()
	if i >= size {
		return component.Noop
	}
	index := seg.SelectedIndex/size*size + i
	if seg.Menu.Prepare(index+1) <= index {
		return component.Noop
	}
	if !ctx.Select(index) {
		return component.Noop
	}
	return component.Accepted
}

// digitIndex maps 1..9 to 0..8 and 0 to 9.
func digitIndex(keycode uint32) int {
	if keycode == keyevent.XK0 {
		return 9
	}
	return int(keycode - keyevent.XK1)
}
