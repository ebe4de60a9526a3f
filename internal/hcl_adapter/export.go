package hcl_adapter

import (
	"sort"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/framegraph/internal/config"
	"github.com/zclconf/go-cty/cty"
)

// Export writes the canonical HCL form of a model: the graph block, then
// passes, edges and outputs in model order. Pass attributes are written in
// lexical order. Loading the result yields an equal model.
func Export(m *config.Model) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	name := m.Name
	if name == "" {
		name = config.DefaultGraphName
	}
	graph := body.AppendNewBlock("graph", []string{name}).Body()
	if len(m.Libraries) > 0 {
		libs := make([]cty.Value, len(m.Libraries))
		for i, lib := range m.Libraries {
			libs[i] = cty.StringVal(lib)
		}
		graph.SetAttributeValue("libraries", cty.ListVal(libs))
	}

	for _, p := range m.Passes {
		body.AppendNewline()
		pb := body.AppendNewBlock("pass", []string{p.Type, p.Name}).Body()
		keys := make([]string, 0, len(p.Config))
		for k := range p.Config {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pb.SetAttributeValue(k, p.Config[k])
		}
	}

	for _, e := range m.Edges {
		body.AppendNewline()
		eb := body.AppendNewBlock("edge", nil).Body()
		eb.SetAttributeValue("from", cty.StringVal(e.From))
		eb.SetAttributeValue("to", cty.StringVal(e.To))
	}

	if len(m.Outputs) > 0 {
		body.AppendNewline()
	}
	for _, o := range m.Outputs {
		body.AppendNewBlock("output", []string{o.Ref})
	}

	return hclwrite.Format(f.Bytes())
}
