// pattern: Functional Core

package layout

import "strings"

const wildcard = "*"

// expandWildcard substitutes the "*" of the main descriptor with the data
// source's remaining eligible fields. Names added next to explicit ones are
// hidden, and the master key is always fetched.
func (h *Handle) expandWildcard(desc string) (string, error) {
	explicit, err := ElementNames(desc)
	if err != nil {
		return "", err
	}
	named := make(map[string]bool, len(explicit))
	for _, name := range explicit {
		named[name] = true
	}

	ds := h.layout.ds
	var added []string
	addedSet := make(map[string]bool)
	if ds != nil {
		for _, f := range ds.WildcardFields() {
			if named[f.Name] || !useAsWildcard(f, h.layout.kind, ds) {
				continue
			}
			added = append(added, f.Name)
			addedSet[f.Name] = true
		}
	}

	desc = replaceWildcard(desc, strings.Join(added, h.layout.kind.separator()))
	if len(explicit) > 0 {
		for _, name := range added {
			h.hidden[name] = true
		}
	}

	if ds != nil {
		if mk := ds.MasterKey(); mk != "" && !named[mk] && !addedSet[mk] && !h.hidden[mk] {
			desc += " " + mk
			h.hidden[mk] = true
		}
	}
	return desc, nil
}

// replaceWildcard substitutes every "*" token of desc with repl. Pictures
// that merely contain a "*" and comment lines of vertical descriptors are
// left alone.
func replaceWildcard(desc, repl string) string {
	lines := strings.Split(desc, "\n")
	vertical := len(lines) > 1
	for i, line := range lines {
		if vertical && strings.HasPrefix(strings.TrimSpace(line), "# ") {
			continue
		}
		fields := strings.Fields(line)
		replaced := false
		for j, f := range fields {
			if f == wildcard {
				fields[j] = repl
				replaced = true
			}
		}
		if replaced {
			lines[i] = strings.Join(fields, " ")
		}
	}
	return strings.Join(lines, "\n")
}

func containsWildcard(desc string) bool {
	lines := []string{desc}
	if isVertical(desc) {
		lines = descriptorLines(desc)
	}
	for _, line := range lines {
		for _, tok := range descriptorTokens(line) {
			if tok == wildcard {
				return true
			}
		}
	}
	return false
}
