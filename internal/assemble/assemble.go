// Package assemble drives the pipeline and concatenates its output.
//
//	enumerate.Each → clause.Build → catalog.Applicable → render.Render → Artifact
//
// The accumulator is a local value threaded through one Generate call; there
// is no package state. GenerateParallel renders cases concurrently and merges
// them by enumeration index, so both paths produce identical bytes.
package assemble

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/querygen/internal/catalog"
	"github.com/roach88/querygen/internal/clause"
	"github.com/roach88/querygen/internal/enumerate"
	"github.com/roach88/querygen/internal/ir"
	"github.com/roach88/querygen/internal/render"
)

// DefaultEngineImport is the import path of the query engine contract.
const DefaultEngineImport = "github.com/roach88/querygen/pkg/ecs"

// DefaultPackage is the package clause of the generated file.
const DefaultPackage = "queryhelpers"

// Header controls the text placed before the first block.
//
// The banner, package clause and engine import are the only text not taken
// from a template; a Go file cannot compile without them. Bare output is the
// plain block concatenation with nothing else in it.
type Header struct {
	Package      string
	EngineImport string
	// Bare drops the header so the artifact is exactly the block concatenation.
	Bare bool
}

// DefaultHeader is the header used when none is configured.
var DefaultHeader = Header{Package: DefaultPackage, EngineImport: DefaultEngineImport}

// render returns the header text, or nothing when Bare.
func (h Header) render() string {
	if h.Bare {
		return ""
	}
	return fmt.Sprintf("// Code generated by %s. DO NOT EDIT.\n\npackage %s\n\nimport %s %q\n\n",
		ir.Generator, h.Package, clause.EnginePackage, h.EngineImport)
}

// Block is one rendered template for one case.
type Block struct {
	Case     ir.GenerationCase
	Template string
	FuncName string
	Text     string
}

// Artifact is the complete generated output of one run.
type Artifact struct {
	Bytes       []byte
	Cases       []ir.GenerationCase
	Blocks      []Block
	Hash        string
	CatalogHash string
}

// Generator renders the whole parameter space against a catalog.
type Generator struct {
	catalog *catalog.Catalog
	bounds  ir.Bounds
	header  Header
	logger  *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithBounds overrides DefaultBounds.
func WithBounds(b ir.Bounds) Option {
	return func(g *Generator) { g.bounds = b }
}

// WithHeader overrides DefaultHeader.
func WithHeader(h Header) Option {
	return func(g *Generator) { g.header = h }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New creates a Generator over cat.
func New(cat *catalog.Catalog, opts ...Option) *Generator {
	g := &Generator{
		catalog: cat,
		bounds:  ir.DefaultBounds,
		header:  DefaultHeader,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate renders every case in enumeration order.
func (g *Generator) Generate() (*Artifact, error) {
	if err := g.bounds.Validate(); err != nil {
		return nil, err
	}
	acc := newAccumulator(g.header, enumerate.Count(g.bounds))
	err := enumerate.Each(g.bounds, func(c ir.GenerationCase) error {
		blocks, err := g.renderCase(c)
		if err != nil {
			return err
		}
		acc.add(c, blocks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g.finish(acc), nil
}

// GenerateParallel renders cases on up to workers goroutines and merges the
// results by enumeration index. The first error cancels the remaining work.
func (g *Generator) GenerateParallel(ctx context.Context, workers int) (*Artifact, error) {
	if workers <= 1 {
		return g.Generate()
	}
	if err := g.bounds.Validate(); err != nil {
		return nil, err
	}

	cases := enumerate.Cases(g.bounds)
	results := make([][]Block, len(cases))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, c := range cases {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			blocks, err := g.renderCase(c)
			if err != nil {
				return err
			}
			results[i] = blocks
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	acc := newAccumulator(g.header, len(cases))
	for i, c := range cases {
		acc.add(c, results[i])
	}
	return g.finish(acc), nil
}

// renderCase builds the clause set for c and renders each applicable template.
func (g *Generator) renderCase(c ir.GenerationCase) ([]Block, error) {
	if err := c.Validate(g.bounds); err != nil {
		return nil, err
	}
	cs := clause.Build(c)
	templates := g.catalog.Applicable(c)
	blocks := make([]Block, 0, len(templates))
	for _, t := range templates {
		text, err := render.Render(t, cs)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, Block{Case: c, Template: t.Name, FuncName: t.FuncName(c), Text: text})
	}
	g.logger.Debug("rendered case",
		zap.String("case", c.Key()),
		zap.Int("blocks", len(blocks)))
	return blocks, nil
}

func (g *Generator) finish(acc *accumulator) *Artifact {
	data := acc.bytes()
	art := &Artifact{
		Bytes:       data,
		Cases:       acc.cases,
		Blocks:      acc.blocks,
		Hash:        ir.ArtifactHash(data),
		CatalogHash: g.catalog.Hash(),
	}
	g.logger.Info("generated artifact",
		zap.Int("cases", len(art.Cases)),
		zap.Int("blocks", len(art.Blocks)),
		zap.Int("bytes", len(art.Bytes)),
		zap.String("hash", art.Hash))
	return art
}

// accumulator owns the output buffer of one run.
type accumulator struct {
	buf    bytes.Buffer
	cases  []ir.GenerationCase
	blocks []Block
}

func newAccumulator(h Header, caseCount int) *accumulator {
	acc := &accumulator{cases: make([]ir.GenerationCase, 0, caseCount)}
	acc.buf.WriteString(h.render())
	return acc
}

// add appends the blocks of one case. Blocks are separated by a blank line.
func (a *accumulator) add(c ir.GenerationCase, blocks []Block) {
	a.cases = append(a.cases, c)
	for _, b := range blocks {
		if len(a.blocks) > 0 {
			a.buf.WriteByte('\n')
		}
		a.buf.WriteString(b.Text)
		a.blocks = append(a.blocks, b)
	}
}

func (a *accumulator) bytes() []byte {
	return a.buf.Bytes()
}
