package pdf

import "strings"

// decodePageText pulls human-readable text out of a raw PDF content stream by
// walking the text-show operators (Tj, TJ, ', ") and collecting their string
// operands. This is a heuristic: it handles literal strings and the common
// escape sequences, not hex strings or CID-keyed fonts.
func decodePageText(content string) string {
	var texts []string

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.Contains(line, " Tj") && !strings.Contains(line, " TJ") &&
			!strings.Contains(line, "' ") && !strings.Contains(line, "\" ") {
			continue
		}
		texts = append(texts, literalStrings(line)...)
	}

	return cleanup(strings.Join(texts, " "))
}

// literalStrings extracts every parenthesized literal string operand from a
// content-stream line, unescaping the standard PDF escapes.
func literalStrings(line string) []string {
	var out []string
	inText := false
	start := -1

	for i, ch := range line {
		switch {
		case ch == '(' && (i == 0 || line[i-1] != '\\'):
			inText = true
			start = i + 1
		case ch == ')' && inText && (i == 0 || line[i-1] != '\\'):
			if start != -1 && start < i {
				text := unescape(line[start:i])
				if strings.TrimSpace(text) != "" {
					out = append(out, text)
				}
			}
			inText = false
			start = -1
		}
	}

	return out
}

func unescape(s string) string {
	r := strings.NewReplacer(
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
	)
	return r.Replace(s)
}

// cleanup collapses runs of whitespace left over from positioning operators.
func cleanup(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
