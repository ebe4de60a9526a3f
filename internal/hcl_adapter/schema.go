package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// rootSchema lists the top-level blocks a graph description may contain.
// Blocks are read through it rather than gohcl so that each keeps its
// source range.
var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "graph", LabelNames: []string{"name"}},
		{Type: "pass", LabelNames: []string{"type", "name"}},
		{Type: "edge"},
		{Type: "output", LabelNames: []string{"ref"}},
	},
}

var edgeSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "from", Required: true},
		{Name: "to", Required: true},
	},
}

// graphBody is the decoded body of a graph block.
type graphBody struct {
	Libraries []string `hcl:"libraries,optional"`
}

// outputBody is the decoded body of an output block, which has no content.
type outputBody struct{}
