// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/routedoc/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a TypeMap into TOON format.
func Encode(tm *model.TypeMap) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(tm.Root)))

	var typeRows [][]any
	for i := range tm.Types {
		ti := &tm.Types[i]
		typeRows = append(typeRows, []any{
			ti.Name,
			string(ti.Kind),
			ti.File,
			strings.Join(ti.Inherits, " "),
			ti.Endpoint,
			ti.Properties,
			ti.Methods,
			ti.Rank,
		})
	}
	parts = append(parts, formatTabular("types",
		[]string{"name", "kind", "file", "inherits", "endpoint", "properties", "methods", "rank"}, typeRows))

	var memberRows [][]any
	for i := range tm.Members {
		m := &tm.Members[i]
		memberRows = append(memberRows, []any{m.Owner, m.Scope, m.Kind, m.Name, m.Type, m.Default})
	}
	parts = append(parts, formatTabular("members",
		[]string{"owner", "scope", "kind", "name", "type", "default"}, memberRows))

	if len(tm.Cases) > 0 {
		var caseRows [][]any
		for i := range tm.Cases {
			c := &tm.Cases[i]
			caseRows = append(caseRows, []any{c.Owner, c.Name, c.Value})
		}
		parts = append(parts, formatTabular("cases", []string{"owner", "name", "value"}, caseRows))
	}

	var refRows [][]any
	for i := range tm.References {
		r := &tm.References[i]
		refRows = append(refRows, []any{r.Source, r.Target, strings.Join(r.Via, " ")})
	}
	parts = append(parts, formatTabular("references", []string{"source", "target", "via"}, refRows))

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeCell(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeCell(cell any) string {
	switch v := cell.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', 4, 64)
	case string:
		return encodeValue(v)
	}
	return encodeValue(fmt.Sprint(cell))
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
