package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/resource"
)

// DAG is a generated graph description: passes in declaration order, their
// ports, the edges between them and the refs to mark.
type DAG struct {
	Order []string
	Ports map[string][]pass.Port
	Edges [][2]string
	Marks []string
}

// RandomDAG builds an acyclic description of n passes from rng. Passes are
// declared in shuffled order. Every input is optional and connected with
// probability 3/4 to an output of an earlier pass in topological order.
// Some passes carry an internal port, and a few refs are marked.
func RandomDAG(rng *rand.Rand, n int) DAG {
	d := DAG{Ports: make(map[string][]pass.Port, n)}
	outputs := make([][]string, n)
	topo := make([]string, n)
	for i := range topo {
		topo[i] = fmt.Sprintf("P%d", i)
	}

	for i, name := range topo {
		var ports []pass.Port
		if i > 0 {
			inputs := rng.Intn(3)
			for k := 0; k < inputs; k++ {
				in := fmt.Sprintf("in%d", k)
				ports = append(ports, OptIn(in))
				if rng.Intn(4) == 0 {
					continue
				}
				src := rng.Intn(i)
				ref := outputs[src][rng.Intn(len(outputs[src]))]
				d.Edges = append(d.Edges, [2]string{ref, name + "." + in})
			}
		}
		outs := 1 + rng.Intn(2)
		for k := 0; k < outs; k++ {
			o := fmt.Sprintf("out%d", k)
			ports = append(ports, Out(o, resource.FormatRGBA32Float))
			outputs[i] = append(outputs[i], name+"."+o)
		}
		if rng.Intn(5) == 0 {
			ports = append(ports, Scratch("history", resource.FormatRGBA32Float))
		}
		d.Ports[name] = ports

		if rng.Intn(6) == 0 {
			d.Marks = append(d.Marks, outputs[i][0])
		}
	}

	if len(d.Edges) > 0 && rng.Intn(2) == 0 {
		d.Marks = append(d.Marks, d.Edges[rng.Intn(len(d.Edges))][1])
	}

	for _, i := range rng.Perm(n) {
		d.Order = append(d.Order, topo[i])
	}
	return d
}
