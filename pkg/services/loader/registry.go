package loader

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ReaderFactory creates a Reader for one file format
type ReaderFactory func(opts Options) Reader

// Registry manages file format reader factories keyed by file extension
type Registry interface {
	// Register adds a new reader factory for an extension such as ".csv"
	Register(ext string, factory ReaderFactory) error
	// Create instantiates the reader registered for the extension
	Create(ext string, opts Options) (Reader, error)
	// ListFormats returns the registered extensions in sorted order
	ListFormats() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]ReaderFactory
}

// NewRegistry creates an empty reader registry
func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]ReaderFactory),
	}
}

// DefaultRegistry knows the delimited text and xlsx formats.
func DefaultRegistry() Registry {
	r := NewRegistry()
	_ = r.Register(".csv", NewDelimitedReader)
	_ = r.Register(".txt", NewDelimitedReader)
	_ = r.Register(".tsv", func(opts Options) Reader {
		opts.Delimiter = '\t'
		return NewDelimitedReader(opts)
	})
	_ = r.Register(".xlsx", NewWorkbookReader)
	return r
}

func (r *registry) Register(ext string, factory ReaderFactory) error {
	ext = normalizeExt(ext)
	if ext == "" {
		return fmt.Errorf("extension cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[ext]; exists {
		return fmt.Errorf("format %q is already registered", ext)
	}

	r.factories[ext] = factory
	return nil
}

func (r *registry) Create(ext string, opts Options) (Reader, error) {
	r.mu.RLock()
	factory, exists := r.factories[normalizeExt(ext)]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("format %q is not registered", ext)
	}

	return factory(opts), nil
}

func (r *registry) ListFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.factories))
	for ext := range r.factories {
		formats = append(formats, ext)
	}
	sort.Strings(formats)
	return formats
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
