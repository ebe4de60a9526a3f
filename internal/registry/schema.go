package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Config is the configuration mapping a pass instance is built from.
type Config map[string]cty.Value

// Attribute declares one configuration key of a pass type.
type Attribute struct {
	Type        cty.Type
	Required    bool
	Default     cty.Value
	Description string
}

// Schema declares the configuration keys a pass type accepts. A nil Schema
// accepts any mapping unchecked.
type Schema map[string]Attribute

// Keys returns the declared keys in lexical order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply checks cfg against the schema and returns a normalized copy: values
// converted to their declared types and defaults filled in for absent keys.
func (s Schema) Apply(cfg Config) (Config, error) {
	out := make(Config, len(cfg))
	if s == nil {
		for k, v := range cfg {
			out[k] = v
		}
		return out, nil
	}

	var unknown []string
	for k := range cfg {
		if _, ok := s[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown keys: %s (accepted: %s)", strings.Join(unknown, ", "), strings.Join(s.Keys(), ", "))
	}

	for _, k := range s.Keys() {
		attr := s[k]
		v, present := cfg[k]
		if !present || v.IsNull() {
			if attr.Required {
				return nil, fmt.Errorf("missing required key %q", k)
			}
			if attr.Default.Type() != cty.NilType {
				out[k] = attr.Default
			}
			continue
		}

		want := attr.Type
		if want == cty.NilType {
			want = cty.DynamicPseudoType
		}
		converted, err := convert.Convert(v, want)
		if err != nil {
			return nil, fmt.Errorf("key %q: expected %s: %w", k, want.FriendlyName(), err)
		}
		if !converted.IsWhollyKnown() {
			return nil, fmt.Errorf("key %q: value must be known at graph-build time", k)
		}
		out[k] = converted
	}
	return out, nil
}

// Decode copies a normalized config into a Go struct whose fields carry
// `cty:"key"` tags. Keys without a value decode only into pointer, slice
// or map fields.
func Decode(cfg Config, target any) error {
	attrs := make(map[string]cty.Value, len(cfg))
	for k, v := range cfg {
		attrs[k] = v
	}
	obj := cty.EmptyObjectVal
	if len(attrs) > 0 {
		obj = cty.ObjectVal(attrs)
	}
	if err := gocty.FromCtyValue(obj, target); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// Encode converts a Go struct with `cty:"key"` tags into a Config, for
// passes reporting their configuration back.
func Encode(src any) (Config, error) {
	ty, err := gocty.ImpliedType(src)
	if err != nil {
		return nil, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	val, err := gocty.ToCtyValue(src, ty)
	if err != nil {
		return nil, err
	}
	if !val.Type().IsObjectType() {
		return nil, fmt.Errorf("config must encode to an object, got %s", val.Type().FriendlyName())
	}
	out := make(Config)
	for k, v := range val.AsValueMap() {
		out[k] = v
	}
	return out, nil
}
