package content

import (
	"fmt"
	"strings"
)

// SplitLines splits text on LF or CRLF. A final line terminator does not
// produce a trailing empty element; a lone CR is kept as content.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// NumberLines prefixes each line with its 1-based number, starting at
// first, padded to the widest number in the block.
func NumberLines(lines []string, first int) string {
	if len(lines) == 0 {
		return ""
	}
	width := len(fmt.Sprint(first + len(lines) - 1))
	var b strings.Builder
	for i, l := range lines {
		fmt.Fprintf(&b, "%*d\t%s\n", width, first+i, l)
	}
	return b.String()
}

// SplitKeepEnds splits text after every "\n", keeping the terminators.
// The empty tail after a final newline is dropped.
func SplitKeepEnds(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
