package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/framegraph/internal/config"
	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL graph description loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file found under paths and merges them into one
// model. Blocks keep their file order, and files are read in the order
// given, directories in lexical order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := resolvePaths(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := &config.Model{}
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := l.merge(ctx, model, hclFile.Body, file); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.", "graph", model.Name, "passes", len(model.Passes), "edges", len(model.Edges), "outputs", len(model.Outputs))
	return model, nil
}

// Parse reads a single description from memory. filename is used in
// diagnostics only.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	model := &config.Model{}
	if err := l.merge(ctx, model, file.Body, filename); err != nil {
		return nil, err
	}
	return model, nil
}

// merge decodes one file body and appends its blocks to model.
func (l *Loader) merge(ctx context.Context, model *config.Model, body hcl.Body, file string) error {
	logger := ctxlog.FromContext(ctx)

	content, diags := body.Content(rootSchema)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "graph":
			name := block.Labels[0]
			if model.Name != "" {
				return fmt.Errorf("%s: graph %q declared, but graph %q was already declared", block.DefRange, name, model.Name)
			}
			var g graphBody
			if diags := gohcl.DecodeBody(block.Body, nil, &g); diags.HasErrors() {
				return fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
			}
			model.Name = name
			model.Libraries = append(model.Libraries, g.Libraries...)
			model.Range = block.DefRange

		case "pass":
			typ, name := block.Labels[0], block.Labels[1]
			cfg, err := passConfig(block.Body)
			if err != nil {
				return fmt.Errorf("%s: pass %q: %w", file, name, err)
			}
			logger.Debug("Translated pass block.", "type", typ, "name", name, "attributes", len(cfg))
			model.Passes = append(model.Passes, &config.Pass{Type: typ, Name: name, Config: cfg, Range: block.DefRange})

		case "edge":
			e, err := edge(block)
			if err != nil {
				return fmt.Errorf("failed to decode HCL file %s: %w", file, err)
			}
			model.Edges = append(model.Edges, e)

		case "output":
			var o outputBody
			if diags := gohcl.DecodeBody(block.Body, nil, &o); diags.HasErrors() {
				return fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
			}
			model.Outputs = append(model.Outputs, &config.Output{Ref: block.Labels[0], Range: block.DefRange})
		}
	}
	return nil
}

// edge reads the from and to references of an edge block, keeping the
// range of each expression.
func edge(block *hcl.Block) (*config.Edge, error) {
	content, diags := block.Body.Content(edgeSchema)
	if diags.HasErrors() {
		return nil, diags
	}
	from, to := content.Attributes["from"], content.Attributes["to"]
	e := &config.Edge{FromRange: from.Expr.Range(), ToRange: to.Expr.Range()}
	diags = append(diags, gohcl.DecodeExpression(from.Expr, nil, &e.From)...)
	diags = append(diags, gohcl.DecodeExpression(to.Expr, nil, &e.To)...)
	if diags.HasErrors() {
		return nil, diags
	}
	return e, nil
}

// passConfig evaluates every attribute of a pass block body.
func passConfig(body hcl.Body) (map[string]cty.Value, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	cfg := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %w", name, diags)
		}
		cfg[name] = val
	}
	return cfg, nil
}
