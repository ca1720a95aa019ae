package jsondoc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"apidrift/internal/archive"
	"apidrift/internal/check"
	"apidrift/internal/ext"
	"apidrift/internal/filter"
	"apidrift/internal/model"
)

// ExtensionID of the analyzer; also the forest origin.
const ExtensionID = "jsondoc"

// Analyzer is the APIAnalyzer extension for JSON and YAML documents.
type Analyzer struct {
	jobs int
}

// NewAnalyzer returns an unconfigured analyzer.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// ExtensionID implements ext.Extension.
func (*Analyzer) ExtensionID() string { return ExtensionID }

// Configure implements ext.Extension. Configuration:
//
//	{"jobs": N} - max parallel workers for document parsing (0=auto)
func (a *Analyzer) Configure(ctx *ext.Context) error {
	a.jobs = 0
	if ctx.Config == nil {
		return nil
	}
	switch j := ctx.Config["jobs"].(type) {
	case float64:
		a.jobs = int(j)
	case int64:
		a.jobs = int(j)
	case int:
		a.jobs = j
	}
	return nil
}

// Close implements ext.Extension.
func (*Analyzer) Close() error { return nil }

// AnalyzerFor implements archive.APIAnalyzer.
func (a *Analyzer) AnalyzerFor(set archive.Set) archive.Analyzer {
	return &forestBuilder{set: set, jobs: a.jobs}
}

// Checks implements archive.APIAnalyzer.
func (a *Analyzer) Checks() []check.Check {
	return []check.Check{&ValueCheck{}}
}

// forestBuilder builds one side's forest. Parsing runs per archive in
// parallel; assembly is single-threaded so child order stays deterministic.
type forestBuilder struct {
	set      archive.Set
	jobs     int
	released bool
}

type parsedDoc struct {
	name string
	role model.Role
	node any
}

// Analyze implements archive.Analyzer. The filter protocol runs over the
// assembled forest (filter.Apply); documents parse whole, so there is
// nothing cheaper to skip on descend=no.
func (b *forestBuilder) Analyze(ctx context.Context, tf filter.TreeFilter) (*model.Forest, error) {
	archives := make([]archive.Archive, 0, len(b.set.Primary)+len(b.set.Supplementary))
	roles := make([]model.Role, 0, cap(archives))
	for _, ar := range b.set.Primary {
		archives = append(archives, ar)
		roles = append(roles, model.RolePrimary)
	}
	for _, ar := range b.set.Supplementary {
		archives = append(archives, ar)
		roles = append(roles, model.RoleSupplementary)
	}

	jobs := b.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Indices are unique per goroutine, no mutex needed.
	docs := make([]parsedDoc, len(archives))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(archives), 1)))
	for i, ar := range archives {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			node, err := parseArchive(ar)
			if err != nil {
				return fmt.Errorf("%s: %w", ar.Name(), err)
			}
			docs[i] = parsedDoc{name: ar.Name(), role: roles[i], node: node}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	forest := model.NewForest(ExtensionID)
	for _, doc := range docs {
		root := model.New(KindDocument, doc.name, doc.name, doc.name)
		root.SetRole(doc.role)
		root.Payload = Payload{File: doc.name}
		root = forest.AddRoot(root)
		buildValue(root, doc.name, "", doc.node, doc.name, doc.role)
	}

	filter.Apply(forest, tf)
	return forest, nil
}

// Prune implements archive.Analyzer.
func (b *forestBuilder) Prune(f *model.Forest) {
	model.PruneSupplementary(f)
}

// Release implements archive.Analyzer. Idempotent.
func (b *forestBuilder) Release() error {
	b.released = true
	return nil
}

func parseArchive(ar archive.Archive) (any, error) {
	rc, err := ar.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(ar.Name())) {
	case ".yaml", ".yml":
		var node any
		if err := yaml.Unmarshal(raw, &node); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return node, nil
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var node any
		if err := dec.Decode(&node); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return node, nil
	}
}
