// Package metrics keeps in-process counters and gauges for a switcher
// session and renders them in the Prometheus text format.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Labels are constant labels attached to a metric.
type Labels map[string]string

// String renders labels as {k="v",...} with sorted keys.
func (l Labels) String() string {
	if len(l) == 0 {
		return ""
	}
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(l))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, k, l[k]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name   string
	help   string
	labels Labels
	value  atomic.Uint64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Value returns the current value.
func (c *Counter) Value() uint64 {
	return c.value.Load()
}

// Gauge is a value that can go up and down.
type Gauge struct {
	name   string
	help   string
	labels Labels
	value  atomic.Int64
}

// Set replaces the value.
func (g *Gauge) Set(v int64) {
	g.value.Store(v)
}

// Value returns the current value.
func (g *Gauge) Value() int64 {
	return g.value.Load()
}

// Summary tracks the count and total of observed durations.
type Summary struct {
	name   string
	help   string
	labels Labels

	mu    sync.Mutex
	count uint64
	sum   time.Duration
}

// Observe records one duration.
func (s *Summary) Observe(d time.Duration) {
	s.mu.Lock()
	s.count++
	s.sum += d
	s.mu.Unlock()
}

// Count returns the number of observations.
func (s *Summary) Count() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Registry owns a set of named metrics.
type Registry struct {
	mu        sync.RWMutex
	namespace string
	counters  map[string]*Counter
	gauges    map[string]*Gauge
	summaries map[string]*Summary
}

// NewRegistry creates a registry whose metric names are prefixed with
// namespace.
func NewRegistry(namespace string) *Registry {
	return &Registry{
		namespace: namespace,
		counters:  make(map[string]*Counter),
		gauges:    make(map[string]*Gauge),
		summaries: make(map[string]*Summary),
	}
}

func (r *Registry) fullName(name string) string {
	if r.namespace == "" {
		return name
	}
	return r.namespace + "_" + name
}

func metricKey(name string, labels Labels) string {
	return name + labels.String()
}

// Counter returns the counter with the given name and labels, registering it
// on first use.
func (r *Registry) Counter(name, help string, labels Labels) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	full := r.fullName(name)
	key := metricKey(full, labels)
	if c, ok := r.counters[key]; ok {
		return c
	}
	c := &Counter{name: full, help: help, labels: labels}
	r.counters[key] = c
	return c
}

// Gauge returns the gauge with the given name and labels, registering it on
// first use.
func (r *Registry) Gauge(name, help string, labels Labels) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	full := r.fullName(name)
	key := metricKey(full, labels)
	if g, ok := r.gauges[key]; ok {
		return g
	}
	g := &Gauge{name: full, help: help, labels: labels}
	r.gauges[key] = g
	return g
}

// Summary returns the summary with the given name, registering it on first
// use.
func (r *Registry) Summary(name, help string, labels Labels) *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	full := r.fullName(name)
	key := metricKey(full, labels)
	if s, ok := r.summaries[key]; ok {
		return s
	}
	s := &Summary{name: full, help: help, labels: labels}
	r.summaries[key] = s
	return s
}

type line struct {
	name, help, kind string
	body             []string
}

// WritePrometheus writes every metric in the Prometheus text format, sorted
// by name.
func (r *Registry) WritePrometheus(w io.Writer) error {
	r.mu.RLock()
	byName := make(map[string]*line)
	add := func(name, help, kind, sample string) {
		l, ok := byName[name]
		if !ok {
			l = &line{name: name, help: help, kind: kind}
			byName[name] = l
		}
		l.body = append(l.body, sample)
	}
	for _, c := range r.counters {
		add(c.name, c.help, "counter", fmt.Sprintf("%s%s %d", c.name, c.labels, c.Value()))
	}
	for _, g := range r.gauges {
		add(g.name, g.help, "gauge", fmt.Sprintf("%s%s %d", g.name, g.labels, g.Value()))
	}
	for _, s := range r.summaries {
		s.mu.Lock()
		add(s.name, s.help, "summary", fmt.Sprintf("%s_sum%s %f", s.name, s.labels, s.sum.Seconds()))
		add(s.name, s.help, "summary", fmt.Sprintf("%s_count%s %d", s.name, s.labels, s.count))
		s.mu.Unlock()
	}
	r.mu.RUnlock()

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		l := byName[name]
		sort.Strings(l.body)
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", l.name, l.help, l.name, l.kind); err != nil {
			return err
		}
		for _, sample := range l.body {
			if _, err := fmt.Fprintln(w, sample); err != nil {
				return err
			}
		}
	}
	return nil
}
