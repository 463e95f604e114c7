// Package knowledge owns a loaded document graph: one root scope plus its
// index, replaced wholesale on every successful load.
package knowledge

import (
	"io"
	"log/slog"
	"sync"

	"github.com/agentic-research/sage/internal/document"
	"github.com/agentic-research/sage/internal/graph"
	"github.com/agentic-research/sage/internal/ingest"
	"github.com/agentic-research/sage/internal/source"
)

// Graph is a knowledge graph over a single document. Loads build a new tree
// off to the side and swap it in only when ingestion succeeds, so a failed
// load leaves the previous root in place. Reads are safe while a load runs.
type Graph struct {
	mu     sync.RWMutex
	root   *graph.Scope
	index  *graph.Index
	origin string // path of the last loaded document, "" for in-memory values
	source *source.Source
	engine *ingest.Engine
	logger *slog.Logger
}

// Option customizes a Graph.
type Option func(*Graph)

// WithSource sets the file collaborator used by LoadPath.
func WithSource(s *source.Source) Option {
	return func(g *Graph) { g.source = s }
}

// WithEngine sets the ingestion engine.
func WithEngine(e *ingest.Engine) Option {
	return func(g *Graph) { g.engine = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// New returns a graph holding an empty root. Without options it reads from
// the host filesystem and ingests with ingest.DefaultConfig.
func New(opts ...Option) *Graph {
	g := &Graph{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.source == nil {
		g.source = source.NewOS()
	}
	if g.engine == nil {
		g.engine = ingest.NewEngine(ingest.DefaultConfig(), ingest.WithLogger(g.logger))
	}
	root := graph.NewScope("")
	root.Seal()
	g.root = root
	g.index = graph.NewIndex(root)
	return g
}

// LoadPath reads and parses path, then loads it. Read and parse failures
// (*source.IOError, *document.ParseError) are returned as is.
func (g *Graph) LoadPath(path string) error {
	doc, err := g.source.Load(path)
	if err != nil {
		g.logger.Warn("load failed", "path", path, "error", err)
		return err
	}
	return g.load(doc, path)
}

// Load replaces the root with a tree ingested from doc. On error the
// previous root stays.
func (g *Graph) Load(doc *document.Value) error {
	return g.load(doc, "")
}

func (g *Graph) load(doc *document.Value, origin string) error {
	root, err := g.engine.Ingest(doc)
	if err != nil {
		g.logger.Warn("ingest failed", "path", origin, "error", err)
		return err
	}
	idx := graph.NewIndex(root)

	g.mu.Lock()
	g.root = root
	g.index = idx
	g.origin = origin
	g.mu.Unlock()

	g.logger.Info("loaded document",
		"path", origin,
		"root", root.ID(),
		"type", root.TypeTag(),
		"scopes", idx.Scopes(),
		"properties", idx.Leaves(),
	)
	return nil
}

// Root returns the current root scope. It is sealed and safe to share.
func (g *Graph) Root() *graph.Scope {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.root
}

// Origin is the path of the last loaded document.
func (g *Graph) Origin() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.origin
}

// Index returns the lookup tables of the current root.
func (g *Graph) Index() *graph.Index {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.index
}

// Lookup returns the scope with the given id.
func (g *Graph) Lookup(id string) (*graph.Scope, error) {
	return g.Index().Lookup(id)
}

// Parent returns the scope owning id.
func (g *Graph) Parent(id string) (*graph.Scope, error) {
	return g.Index().Parent(id)
}

// FindByType returns scopes tagged with tag in document order.
func (g *Graph) FindByType(tag string) []*graph.Scope {
	return g.Index().FindByType(tag)
}

// Query runs a JSONPath expression over the current root.
func (g *Graph) Query(selector string) ([]any, error) {
	return g.Root().Query(selector)
}

// Render returns the canonical text form of the current root.
func (g *Graph) Render() string {
	return g.Root().Render()
}

// Stats summarizes the current tree.
type Stats struct {
	Scopes     int
	Properties int
	Depth      int
	Types      []graph.TypeCount
}

func (g *Graph) Stats() Stats {
	idx := g.Index()
	return Stats{
		Scopes:     idx.Scopes(),
		Properties: idx.Leaves(),
		Depth:      idx.Depth(),
		Types:      idx.Types(),
	}
}
