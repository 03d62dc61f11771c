// Package graph builds the type reference graph of a registry and computes
// PageRank over it.
package graph

import (
	"math"
	"sort"

	"github.com/phobologic/routedoc/internal/model"
	"github.com/phobologic/routedoc/internal/typeexpr"
)

// References returns an edge from every registered type to each other
// registered type named in its property, argument or return types. Via
// lists the members that carry the reference, in declaration order.
func References(reg *model.Registry) []model.Reference {
	type edgeKey struct{ src, tgt string }
	edgeVia := make(map[edgeKey][]string)

	add := func(src, member, rawType string) {
		for _, name := range typeexpr.Parse(rawType).Objects() {
			if name == src {
				continue // no self-edges
			}
			if _, ok := reg.Get(name); !ok {
				continue
			}
			key := edgeKey{src, name}
			// Only add member if not already present
			if !contains(edgeVia[key], member) {
				edgeVia[key] = append(edgeVia[key], member)
			}
		}
	}

	for td := range reg.All() {
		for _, props := range []*model.Members[model.PropertyDescription]{&td.StaticProperties, &td.InstanceProperties} {
			for _, p := range props.All() {
				add(td.Name, p.Name, p.Type)
			}
		}
		for _, methods := range []*model.Members[model.MethodDescription]{&td.StaticMethods, &td.InstanceMethods} {
			for _, m := range methods.All() {
				for _, a := range m.Arguments.All() {
					add(td.Name, m.Name, a.Type)
				}
				if m.ReturnType != "" {
					add(td.Name, m.Name, m.ReturnType)
				}
			}
		}
	}

	refs := make([]model.Reference, 0, len(edgeVia))
	for key, via := range edgeVia {
		refs = append(refs, model.Reference{Source: key.src, Target: key.tgt, Via: via})
	}

	// Sort for deterministic output
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Source != refs[j].Source {
			return refs[i].Source < refs[j].Source
		}
		return refs[i].Target < refs[j].Target
	})
	return refs
}

// Rank applies PageRank to types and sorts them by rank descending. Types
// of equal rank keep their relative order.
func Rank(types []model.TypeInfo, refs []model.Reference) {
	if len(types) == 0 {
		return
	}

	if len(refs) == 0 {
		uniform := 1.0 / float64(len(types))
		for i := range types {
			types[i].Rank = uniform
		}
		return
	}

	// Edge from source to target means source references target.
	// Each member carrying the reference counts as one edge.
	outEdges := make(map[string][]string) // node → list of targets (with repeats for multi-edges)
	outDegree := make(map[string]int)     // total out-edges per node
	nodes := make(map[string]struct{})

	for i := range types {
		nodes[types[i].Name] = struct{}{}
	}

	for _, r := range refs {
		for range r.Via {
			outEdges[r.Source] = append(outEdges[r.Source], r.Target)
			outDegree[r.Source]++
		}
	}

	ranks := pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)

	for i := range types {
		types[i].Rank = ranks[types[i].Name]
	}

	sort.SliceStable(types, func(i, j int) bool {
		return types[i].Rank > types[j].Rank
	})
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for node := range nodes {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		// Dangling node contribution (nodes with no outgoing edges)
		var danglingSum float64
		for node := range nodes {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		// Distribute rank through edges
		for src, targets := range outEdges {
			deg := float64(outDegree[src])
			contrib := alpha * rank[src] / deg
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		// Check convergence
		var diff float64
		for node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
