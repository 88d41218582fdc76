package driver

import (
	"regexp"

	"github.com/skaldic/xsdc/internal/files/scanner"
	"github.com/skaldic/xsdc/pkg/xsdc"
)

// directiveRegex extracts schemaLocation-bearing directives ahead of full
// parsing. Lightweight structural extraction is sufficient for closure
// discovery; actual dependency semantics come from the parser during
// resolution.
var directiveRegex = regexp.MustCompile(`(?is)<\s*(?:[\w.-]+:)?(?:include|import|redefine)\b[^>]*?schemaLocation\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// extractLocations returns the raw schemaLocation strings of all
// import/include/redefine directives in content, in document order. Both
// attribute quote styles are accepted.
func extractLocations(content []byte) []string {
	matches := directiveRegex.FindAllSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		loc := m[1]
		if loc == nil {
			loc = m[2]
		}
		out = append(out, string(loc))
	}
	return out
}

// closureFrom computes the transitive dependency closure of the given root
// ids over the scanned files, breadth-first, first-seen order, roots first.
// Schemas referenced but absent from files are part of the closure; the
// caller decides whether they become stubs or failures.
func closureFrom(rootIDs []string, files map[string]scanner.SchemaFile, locate xsdc.LocationResolver) []string {
	var order []string
	seen := make(map[string]bool)

	queue := append([]string(nil), rootIDs...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)

		file, ok := files[id]
		if !ok {
			continue
		}
		for _, loc := range extractLocations(file.Content) {
			target := locate(id, loc)
			if !seen[target] {
				queue = append(queue, target)
			}
		}
	}

	return order
}
