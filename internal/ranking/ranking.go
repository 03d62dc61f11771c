// Package ranking narrows a type map to the types worth showing.
package ranking

import (
	"strings"

	"github.com/phobologic/routedoc/internal/model"
)

// SelectTypes returns a new TypeMap with only the top-ranked types.
// If maxTypes is <= 0 or >= len(types), the original is returned.
func SelectTypes(tm *model.TypeMap, maxTypes int) *model.TypeMap {
	if maxTypes <= 0 || maxTypes >= len(tm.Types) {
		return tm
	}

	keep := make(map[string]struct{}, maxTypes)
	for i := range tm.Types[:maxTypes] {
		keep[tm.Types[i].Name] = struct{}{}
	}
	return subset(tm, keep, func(r *model.Reference) bool {
		_, srcOK := keep[r.Source]
		_, tgtOK := keep[r.Target]
		return srcOK && tgtOK
	})
}

// FilterByName returns a new TypeMap containing the types whose name
// contains substr (case-insensitive), the types they reference or are
// referenced by, and the edges that touch a matched type.
func FilterByName(tm *model.TypeMap, substr string) *model.TypeMap {
	lower := strings.ToLower(substr)

	matched := make(map[string]struct{})
	for i := range tm.Types {
		if strings.Contains(strings.ToLower(tm.Types[i].Name), lower) {
			matched[tm.Types[i].Name] = struct{}{}
		}
	}

	// Expand to direct neighbours of matched types.
	keep := make(map[string]struct{}, len(matched))
	for name := range matched {
		keep[name] = struct{}{}
	}
	for i := range tm.References {
		r := &tm.References[i]
		if _, ok := matched[r.Source]; ok {
			keep[r.Target] = struct{}{}
		}
		if _, ok := matched[r.Target]; ok {
			keep[r.Source] = struct{}{}
		}
	}

	return subset(tm, keep, func(r *model.Reference) bool {
		_, srcOK := matched[r.Source]
		_, tgtOK := matched[r.Target]
		return srcOK || tgtOK
	})
}

// Endpoints returns a new TypeMap containing the endpoint types and every
// type reachable from them through references.
func Endpoints(tm *model.TypeMap) *model.TypeMap {
	out := make(map[string][]string)
	for i := range tm.References {
		r := &tm.References[i]
		out[r.Source] = append(out[r.Source], r.Target)
	}

	keep := make(map[string]struct{})
	var queue []string
	for i := range tm.Types {
		if tm.Types[i].Endpoint {
			keep[tm.Types[i].Name] = struct{}{}
			queue = append(queue, tm.Types[i].Name)
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, tgt := range out[name] {
			if _, seen := keep[tgt]; !seen {
				keep[tgt] = struct{}{}
				queue = append(queue, tgt)
			}
		}
	}

	return subset(tm, keep, func(r *model.Reference) bool {
		_, ok := keep[r.Source]
		return ok
	})
}

// subset copies the rows of tm owned by kept types, in their original
// order, and the references accepted by keepRef.
func subset(tm *model.TypeMap, keep map[string]struct{}, keepRef func(*model.Reference) bool) *model.TypeMap {
	res := &model.TypeMap{Root: tm.Root}
	for i := range tm.Types {
		if _, ok := keep[tm.Types[i].Name]; ok {
			res.Types = append(res.Types, tm.Types[i])
		}
	}
	for i := range tm.Members {
		if _, ok := keep[tm.Members[i].Owner]; ok {
			res.Members = append(res.Members, tm.Members[i])
		}
	}
	for i := range tm.Cases {
		if _, ok := keep[tm.Cases[i].Owner]; ok {
			res.Cases = append(res.Cases, tm.Cases[i])
		}
	}
	for i := range tm.References {
		if keepRef(&tm.References[i]) {
			res.References = append(res.References, tm.References[i])
		}
	}
	return res
}
