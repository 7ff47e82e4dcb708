package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/wintitle/lang"
)

// ctrlCommands are the command-mode verbs.
var ctrlCommands = []string{"clear", "edit", "help", "load", "quit", "set", "vars"}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}

// byteOffset converts a rune index into s to a byte offset, clamped to
// len(s). The text input reports its cursor in runes.
func byteOffset(s string, runes int) int {
	for i := range s {
		if runes <= 0 {
			return i
		}

		runes--
	}

	return len(s)
}

// wordBounds returns the identifier under the cursor and its byte range.
// The word is empty when the cursor is not adjacent to an identifier.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, n := utf8.DecodeLastRuneInString(input[:start])
		if !isWordRune(r) {
			break
		}

		start -= n
	}

	end = cursor
	for end < len(input) {
		r, n := utf8.DecodeRuneInString(input[end:])
		if !isWordRune(r) {
			break
		}

		end += n
	}

	return input[start:end], start, end
}

// inString reports whether offset falls inside a string literal. A
// doubled quote inside a literal toggles twice and so leaves it open.
func inString(input string, offset int) bool {
	open := false

	for i := 0; i < offset && i < len(input); i++ {
		if input[i] == '"' {
			open = !open
		}
	}

	return open
}

// evalCandidates returns the completion candidates for expressions:
// known variable names followed by keywords not shadowed by them.
func evalCandidates(vars []string) []string {
	out := slices.Clone(vars)

	for _, kw := range lang.Keywords() {
		if !slices.Contains(out, kw) {
			out = append(out, kw)
		}
	}

	return out
}

// computeMatches ranks candidates against the word at the cursor.
func (m model) computeMatches() (matches fuzzy.Matches, start, end int) {
	input := m.input.Value()
	cursor := byteOffset(input, m.input.Position())

	word, start, end := wordBounds(input, cursor)
	if word == "" {
		return nil, start, end
	}

	var candidates []string

	switch m.mode {
	case modeCtrl:
		// Only the verb is completed.
		if strings.TrimSpace(input[:start]) != "" {
			return nil, start, end
		}

		candidates = ctrlCommands

	default:
		if inString(input, start) {
			return nil, start, end
		}

		candidates = evalCandidates(m.vars.Names())
	}

	return fuzzy.Find(word, candidates), start, end
}

// renderCandidateBar renders matches on one line no wider than width,
// ending with an ellipsis when some do not fit.
func renderCandidateBar(matches fuzzy.Matches, selected int, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	room := width - lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		item := renderCandidate(match, i == selected)

		w := lipgloss.Width(item)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && i < len(matches)-1 && used+w > room {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(item)

		used += w
	}

	return b.String()
}

// renderCandidate highlights the matched runes of match.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, hit := suggestionStyle, matchStyle
	if selected {
		base, hit = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	next := 0

	for i, r := range match.Str {
		if next < len(match.MatchedIndexes) && match.MatchedIndexes[next] == i {
			b.WriteString(hit.Render(string(r)))

			next++

			continue
		}

		b.WriteString(base.Render(string(r)))
	}

	return b.String()
}
