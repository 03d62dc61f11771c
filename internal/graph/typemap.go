package graph

import (
	"github.com/phobologic/routedoc/internal/model"
)

// TypeMap summarises reg for display: one row per type, ranked by PageRank
// over the reference graph, followed by the member and case rows of each
// type in the same order. Types conforming to marker are flagged as
// endpoints.
func TypeMap(root string, reg *model.Registry, marker string) *model.TypeMap {
	refs := References(reg)

	types := make([]model.TypeInfo, 0, reg.Len())
	for td := range reg.All() {
		types = append(types, model.TypeInfo{
			Name:       td.Name,
			Kind:       td.Kind,
			File:       td.File,
			Inherits:   td.InheritedTypes,
			Endpoint:   td.Inherits(marker),
			Properties: td.StaticProperties.Len() + td.InstanceProperties.Len(),
			Methods:    td.StaticMethods.Len() + td.InstanceMethods.Len(),
			Cases:      td.Cases.Len(),
		})
	}
	Rank(types, refs)

	tm := &model.TypeMap{Root: root, Types: types, References: refs}
	for _, ti := range types {
		td, _ := reg.Get(ti.Name)
		tm.Members = append(tm.Members, members(td)...)
		for _, c := range td.Cases.All() {
			tm.Cases = append(tm.Cases, model.CaseRow{Owner: td.Name, Name: c.Name, Value: c.Value, Order: c.Order})
		}
	}
	return tm
}

func members(td *model.TypeDescription) []model.Member {
	var out []model.Member
	props := func(scope string, m *model.Members[model.PropertyDescription]) {
		for _, p := range m.All() {
			out = append(out, model.Member{
				Owner:   td.Name,
				Scope:   scope,
				Kind:    "property",
				Name:    p.Name,
				Type:    p.Type,
				Default: p.DefaultValue,
				Order:   p.Order,
			})
		}
	}
	methods := func(scope string, m *model.Members[model.MethodDescription]) {
		for _, fn := range m.All() {
			out = append(out, model.Member{
				Owner: td.Name,
				Scope: scope,
				Kind:  "method",
				Name:  fn.Name,
				Type:  fn.ReturnType,
				Order: fn.Order,
			})
		}
	}
	props("static", &td.StaticProperties)
	methods("static", &td.StaticMethods)
	props("instance", &td.InstanceProperties)
	methods("instance", &td.InstanceMethods)
	return out
}
