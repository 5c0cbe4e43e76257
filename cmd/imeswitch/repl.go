package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"imeswitch/internal/host"
	"imeswitch/internal/keyevent"
	"imeswitch/internal/processors"
	"imeswitch/internal/store"
)

type repl struct {
	h   *host.Host
	out io.Writer
}

func newREPL(h *host.Host, out io.Writer) *repl {
	return &repl{h: h, out: out}
}

func (r *repl) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quit := false
		r.h.Serialize(func() { quit = r.handle(line) })
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

// handle runs one line and reports whether the session should end.
func (r *repl) handle(line string) bool {
	sw := r.h.Switcher
	switch line {
	case ":quit", ":q":
		return true
	case ":next":
		sw.SelectNextSchema()
		r.printState()
	case ":menu":
		r.printMenu()
	case ":options":
		for _, name := range r.h.Engine.OptionNames() {
			fmt.Fprintf(r.out, "%s=%t\n", name, r.h.Engine.GetOption(name))
		}
	case ":saved":
		entries, err := r.h.User.List("")
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		for _, e := range entries {
			fmt.Fprintf(r.out, "%s=%s\n", e.Key, e.Value)
		}
	case ":stats":
		if err := r.h.Registry.WritePrometheus(r.out); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	case ":reload":
		if _, err := r.h.Loader.Load(); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		sw.LoadSettings()
		r.printState()
	default:
		if name, ok := strings.CutPrefix(line, ":forget "); ok {
			if err := r.h.User.Delete(store.OptionKey(strings.TrimSpace(name))); err != nil {
				fmt.Fprintf(r.out, "error: %v\n", err)
			}
			return false
		}
		ev, err := keyevent.Parse(line)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		handled := r.h.ProcessKeyEvent(ev)
		fmt.Fprintf(r.out, "%s handled=%t ", ev, handled)
		r.printState()
		if sw.Active() {
			r.printMenu()
		}
	}
	return false
}

func (r *repl) printState() {
	state := "inactive"
	if r.h.Switcher.Active() {
		state = "active"
	}
	current := "-"
	if sc := r.h.Engine.Schema(); sc != nil {
		current = sc.ID
	}
	fmt.Fprintf(r.out, "state=%s schema=%s\n", state, current)
}

func (r *repl) printMenu() {
	seg := r.h.Switcher.Segment()
	if seg == nil {
		fmt.Fprintln(r.out, "(menu closed)")
		return
	}
	pageSize := processors.DefaultPageSize
	if src := r.h.Switcher.Config(); src != nil {
		if n, ok := src.GetInt(processors.PageSizeKey); ok && n > 0 {
			pageSize = n
		}
	}
	page := seg.Menu.CreatePage(pageSize, seg.SelectedIndex/pageSize)
	if page == nil {
		fmt.Fprintln(r.out, "(empty menu)")
		return
	}
	if seg.Prompt != "" {
		fmt.Fprintln(r.out, seg.Prompt)
	}
	for i, c := range page.Candidates {
		index := page.PageNo*page.PageSize + i
		marker := " "
		if index == seg.SelectedIndex {
			marker = ">"
		}
		line := fmt.Sprintf("%s %d. %s", marker, (i+1)%10, c.Text())
		if c.Comment() != "" {
			line += " (" + c.Comment() + ")"
		}
		fmt.Fprintln(r.out, line)
	}
	if !page.IsLastPage {
		fmt.Fprintln(r.out, "  ...")
	}
}
