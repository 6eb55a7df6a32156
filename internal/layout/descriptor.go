// pattern: Functional Core

package layout

import (
	"strconv"
	"strings"
)

const mainName = "main"

// joinContinued removes backslash-newline continuations.
func joinContinued(desc string) string {
	return strings.ReplaceAll(desc, "\\\n", "")
}

// isVertical reports whether desc describes a vertical box.
// A horizontal box may not contain any newline.
func isVertical(desc string) bool {
	return strings.Contains(desc, "\n")
}

// descriptorLines returns the non-blank, non-comment lines of a vertical
// descriptor, trimmed.
func descriptorLines(desc string) []string {
	var lines []string
	for _, line := range strings.Split(desc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "# ") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// descriptorTokens returns the element pictures of a horizontal descriptor.
func descriptorTokens(desc string) []string {
	var tokens []string
	for _, tok := range strings.Fields(desc) {
		if strings.HasPrefix(tok, "#") {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ParsePicture splits an element picture of the form name, name:width or
// name:widthxheight.
func ParsePicture(picture string) (string, Options, error) {
	name, size, found := strings.Cut(picture, ":")
	if !found {
		return picture, Options{}, nil
	}

	var opts Options
	w, h, hasHeight := strings.Cut(size, "x")
	width, err := strconv.Atoi(w)
	if err != nil {
		return "", Options{}, &PictureError{Picture: picture, Err: err}
	}
	opts.Width = width
	if hasHeight {
		height, err := strconv.Atoi(h)
		if err != nil {
			return "", Options{}, &PictureError{Picture: picture, Err: err}
		}
		opts.Height = height
	}
	return name, opts, nil
}

// ElementNames returns the names referenced by a descriptor, in order,
// without sizes. Wildcards and comments are skipped.
func ElementNames(desc string) ([]string, error) {
	desc = joinContinued(desc)
	lines := []string{desc}
	if isVertical(desc) {
		lines = descriptorLines(desc)
	}

	var names []string
	for _, line := range lines {
		for _, tok := range descriptorTokens(line) {
			if tok == "*" {
				continue
			}
			name, _, err := ParsePicture(tok)
			if err != nil {
				return nil, err
			}
			names = append(names, name)
		}
	}
	return names, nil
}
