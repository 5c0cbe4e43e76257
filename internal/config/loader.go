package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Format names a settings file encoding.
type Format string

// Supported formats.
const (
	FormatAuto Format = ""
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// Parse decodes a settings document. It does not validate; see
// ValidateSwitcher.
func Parse(data []byte, format Format) (Node, error) {
	var root any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return Node{}, fmt.Errorf("decode YAML: %w", err)
		}
	case FormatTOML:
		m := make(map[string]any)
		if _, err := toml.Decode(string(data), &m); err != nil {
			return Node{}, fmt.Errorf("decode TOML: %w", err)
		}
		root = m
	case FormatJSON:
		if err := json.Unmarshal(data, &root); err != nil {
			return Node{}, fmt.Errorf("decode JSON: %w", err)
		}
	default:
		var err error
		if root, err = autoDetectAndParse(data); err != nil {
			return Node{}, fmt.Errorf("parse config: %w", err)
		}
	}

	return NewNode(root), nil
}

// autoDetectAndParse attempts to parse the document in multiple formats.
func autoDetectAndParse(data []byte) (any, error) {
	var root any
	if err := json.Unmarshal(data, &root); err == nil {
		return root, nil
	}

	m := make(map[string]any)
	if _, err := toml.Decode(string(data), &m); err == nil {
		return m, nil
	}

	root = nil
	if err := yaml.Unmarshal(data, &root); err == nil {
		return root, nil
	}

	return nil, fmt.Errorf("unable to parse config file (tried JSON, TOML, YAML)")
}

// Load reads the settings file at path. A missing file yields an empty
// source so every lookup degrades to its default. Entries that do not match
// the switcher schema are kept and listed by Source.Issues; readers skip
// what they cannot use.
func Load(path string) (*Source, error) {
	root, issues, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	src := &Source{path: path}
	src.replace(root, issues)
	return src, nil
}

func loadFile(path string) (Node, ValidationErrors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Node{}, nil, nil
		}
		return Node{}, nil, fmt.Errorf("read config: %w", err)
	}
	root, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return Node{}, nil, err
	}
	var issues ValidationErrors
	if err := ValidateSwitcher(root); err != nil && !errors.As(err, &issues) {
		return Node{}, nil, err
	}
	return root, issues, nil
}

// Loader owns a Source backed by a file and keeps it current while watching.
type Loader struct {
	path     string
	source   *Source
	mu       sync.RWMutex
	watcher  *fsnotify.Watcher
	onChange []func(*Source)
	ctx      context.Context
	cancel   context.CancelFunc
	errChan  chan error
}

// NewLoader creates a loader for path.
func NewLoader(path string) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		path:    path,
		errChan: make(chan error, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Load reads the file and returns the source. Later reloads update the same
// Source in place.
func (l *Loader) Load() (*Source, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	root, issues, err := loadFile(l.path)
	if err != nil {
		return nil, err
	}
	if l.source == nil {
		l.source = &Source{path: l.path}
	}
	l.source.replace(root, issues)
	return l.source, nil
}

// Source returns the current source, or nil before Load.
func (l *Loader) Source() *Source {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.source
}

// Watch starts watching the settings file. When it changes, the file is
// re-read, the Source is updated and callbacks run on the
// watcher goroutine.
func (l *Loader) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	l.watcher = watcher

	// Editors replace files by rename, so watch the directory.
	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go l.watchLoop()

	return nil
}

func (l *Loader) watchLoop() {
	var debounceTimer *time.Timer
	debounceDelay := 100 * time.Millisecond

	for {
		select {
		case <-l.ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(l.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, l.reload)

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.report(err)
		}
	}
}

// reload re-reads the file; a file that fails to parse leaves the current
// tree in place.
func (l *Loader) reload() {
	root, issues, err := loadFile(l.path)
	if err != nil {
		l.report(fmt.Errorf("reload config: %w", err))
		return
	}

	l.mu.Lock()
	if l.source == nil {
		l.source = &Source{path: l.path}
	}
	l.source.replace(root, issues)
	src := l.source
	callbacks := append([]func(*Source){}, l.onChange...)
	l.mu.Unlock()

	for _, cb := range callbacks {
		cb(src)
	}
}

func (l *Loader) report(err error) {
	select {
	case l.errChan <- err:
	default:
	}
}

// OnChange registers a callback invoked after each successful reload.
func (l *Loader) OnChange(cb func(*Source)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, cb)
}

// Errors returns a channel for receiving errors that occur during watching.
func (l *Loader) Errors() <-chan error {
	return l.errChan
}

// Close stops the watcher and releases resources.
func (l *Loader) Close() error {
	l.cancel()
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
