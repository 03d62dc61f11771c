package resolve

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phobologic/routedoc/internal/typeexpr"
)

// CleanPath strips the literal quotes from a path default value and makes
// sure the result is rooted.
func CleanPath(raw string) string {
	p := strings.Trim(strings.TrimSpace(raw), `"`)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// CleanMethod turns a method default value such as ".get",
// "APIRoutingHTTPMethod.post" or "\"PUT\"" into a lower-case HTTP method.
func CleanMethod(raw string) string {
	m := strings.Trim(strings.TrimSpace(raw), `"`)
	if i := strings.LastIndexByte(m, '.'); i >= 0 {
		m = m[i+1:]
	}
	return strings.ToLower(m)
}

// bindPathParam rewrites the ":name" segment of path to "{name}".
func bindPathParam(path, name string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s == ":"+name {
			segs[i] = "{" + name + "}"
		}
	}
	return strings.Join(segs, "/")
}

// tagFor returns the capitalised first literal segment of path.
func tagFor(path string) string {
	for _, s := range strings.Split(path, "/") {
		if s == "" {
			continue
		}
		if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "{") {
			return ""
		}
		r, size := utf8.DecodeRuneInString(s)
		return string(unicode.ToUpper(r)) + s[size:]
	}
	return ""
}

// flatName renders e as an identifier usable as a component name.
func flatName(e typeexpr.Expr) string {
	switch e.Kind {
	case typeexpr.Optional:
		return flatName(*e.Elem)
	case typeexpr.Array:
		return flatName(*e.Elem) + "List"
	case typeexpr.Dict:
		return flatName(*e.Key) + "To" + flatName(*e.Elem) + "Map"
	case typeexpr.Page:
		return pageName(*e.Elem)
	case typeexpr.Void:
		return "Void"
	}
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, e.Name)
}

// pageName is the component name of the paginated envelope around inner.
func pageName(inner typeexpr.Expr) string {
	return "Page" + flatName(inner)
}
