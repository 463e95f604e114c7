// Package ingest walks a parsed document and builds the scope tree: every
// object or array becomes a child Scope, every scalar becomes an Entity.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/agentic-research/sage/internal/datatype"
	"github.com/agentic-research/sage/internal/document"
	"github.com/agentic-research/sage/internal/graph"
)

const (
	DefaultTypeKey  = "@type"
	DefaultMaxDepth = 1000

	// MaxAllowedDepth caps MaxDepth. Tree walks recurse once per level, so
	// deeper documents would exhaust the goroutine stack.
	MaxAllowedDepth = 100000

	// ValueKey holds the scalar when the whole document is a single scalar.
	ValueKey = "value"
)

// ErrDepthExceeded matches any *DepthError.
var ErrDepthExceeded = errors.New("max depth exceeded")

// DepthError reports a document nested deeper than the configured bound.
type DepthError struct {
	Limit int
	Path  string // JSON pointer of the first value past the limit
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("document nesting exceeds max depth %d at %s", e.Limit, e.Path)
}

func (e *DepthError) Is(target error) bool { return target == ErrDepthExceeded }

// Config controls classification.
type Config struct {
	TypeKey  string       // reserved key consumed into Scope type tags (default "@type")
	MaxDepth int          // deepest allowed container nesting; the root is 1 (default 1000, at most MaxAllowedDepth)
	SkipKeys []string     // keys dropped entirely, e.g. "@context"
	IDs      graph.IDFunc // scope id source (default UUIDs)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TypeKey:  DefaultTypeKey,
		MaxDepth: DefaultMaxDepth,
	}
}

// Engine drives the ingestion process. An Engine holds no per-document
// state, so one instance can serve any number of sequential or parallel
// loads.
type Engine struct {
	cfg    Config
	skip   map[string]struct{}
	logger *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger routes the engine's diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEngine(cfg Config, opts ...Option) *Engine {
	if cfg.TypeKey == "" {
		cfg.TypeKey = DefaultTypeKey
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	cfg.MaxDepth = min(cfg.MaxDepth, MaxAllowedDepth)
	if cfg.IDs == nil {
		cfg.IDs = graph.UUIDs
	}
	e := &Engine{
		cfg:    cfg,
		skip:   make(map[string]struct{}, len(cfg.SkipKeys)),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, k := range cfg.SkipKeys {
		e.skip[k] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Ingest builds a sealed scope tree from v. An array document yields a
// sequence root; a scalar document yields a root holding ValueKey.
func (e *Engine) Ingest(v *document.Value) (*graph.Scope, error) {
	var root *graph.Scope
	if v.Kind() == document.Array {
		root = graph.NewSequenceWithIDs(e.cfg.IDs)
	} else {
		root = graph.NewScopeWithIDs("", e.cfg.IDs)
	}
	w := &walker{engine: e}
	if err := w.populate(root, v, 1); err != nil {
		return nil, err
	}
	root.Seal()
	e.logger.Debug("ingested document",
		"root", root.ID(),
		"type", root.TypeTag(),
		"scopes", w.scopes+1,
		"properties", w.properties,
		"depth", w.maxDepth,
	)
	return root, nil
}

// Populate fills an existing scope from v without sealing it. The type key
// of an object is consumed into target's type tag.
func (e *Engine) Populate(target *graph.Scope, v *document.Value) error {
	w := &walker{engine: e}
	return w.populate(target, v, 1)
}

// TypeTagOf returns the type an object declares under key, if it declares
// one as a string.
func TypeTagOf(v *document.Value, key string) (string, bool) {
	if v.Kind() != document.Object {
		return "", false
	}
	t, ok := v.Get(key)
	if !ok || t.Kind() != document.String {
		return "", false
	}
	return t.Str(), true
}

// Primitive resolves a scalar document value. Booleans and numbers map to
// their own variant; strings, null and numbers too large for int64 or
// float64 go through datatype.Classify.
func Primitive(v *document.Value) datatype.Value {
	switch v.Kind() {
	case document.Bool:
		return datatype.NewBool(v.Bool())
	case document.Number:
		switch v.NumberForm() {
		case document.IntForm:
			return datatype.NewInt(v.Int())
		case document.FloatForm:
			return datatype.NewFloat(v.Float())
		}
	}
	return datatype.Classify(v.Literal())
}

// walker carries the per-call path and counters. Each recursive call only
// touches the subtree of its own target.
type walker struct {
	engine     *Engine
	path       []string
	scopes     int
	properties int
	maxDepth   int
}

func (w *walker) populate(target *graph.Scope, v *document.Value, depth int) error {
	cfg := w.engine.cfg
	if depth > cfg.MaxDepth {
		return &DepthError{Limit: cfg.MaxDepth, Path: w.pointer()}
	}
	if depth > w.maxDepth {
		w.maxDepth = depth
	}

	if !v.Structured() {
		return w.scalar(target, ValueKey, v)
	}

	typeConsumed := false
	if tag, ok := TypeTagOf(v, cfg.TypeKey); ok {
		if err := target.SetTypeTag(tag); err != nil {
			return err
		}
		typeConsumed = true
	}

	var err error
	v.Each(func(key string, child *document.Value) {
		if err != nil {
			return
		}
		if typeConsumed && key == cfg.TypeKey {
			return
		}
		if _, skip := w.engine.skip[key]; skip {
			return
		}
		w.path = append(w.path, key)
		err = w.member(target, key, child, depth)
		w.path = w.path[:len(w.path)-1]
	})
	return err
}

func (w *walker) member(target *graph.Scope, key string, v *document.Value, depth int) error {
	if !v.Structured() {
		return w.scalar(target, key, v)
	}

	var (
		child *graph.Scope
		err   error
	)
	if v.Kind() == document.Array {
		child, err = target.AddChildSequence(key)
	} else {
		tag, _ := TypeTagOf(v, w.engine.cfg.TypeKey)
		child, err = target.AddChildScope(key, tag)
	}
	if err != nil {
		return err
	}
	w.scopes++
	if err := w.populate(child, v, depth+1); err != nil {
		return err
	}
	child.Seal()
	return nil
}

func (w *walker) scalar(target *graph.Scope, key string, v *document.Value) error {
	w.properties++
	return target.SetProperty(key, graph.FromPrimitive(Primitive(v)))
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// pointer renders the current path as an RFC 6901 JSON pointer.
func (w *walker) pointer() string {
	if len(w.path) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, p := range w.path {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(p))
	}
	return b.String()
}
