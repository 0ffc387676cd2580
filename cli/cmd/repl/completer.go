package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/dopa/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "edit", "reset", "clear", "quit"}

// isWordBoundary reports whether r ends an identifier for completion
// purposes.
func isWordBoundary(r rune) bool {
	return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. Returns an empty word when the cursor sits on a
// boundary (after a space, an operator, the start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word that
// starts at wordStart. For "x + player.pos.y" with the word "y", it is
// "player.pos". It is "" when the word is not preceded by a dot.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimSuffix(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ".")
}

// candidates returns the completions for a word following parent. At the
// top level these are keywords, natives, script functions and globals.
// After a dot they are the member names of the structure or map the parent
// chain resolves to.
func candidates(it *lang.Interpreter, parent string) []string {
	if parent == "" {
		names := slices.Concat(lang.Keywords(), it.Natives(), it.Functions(), it.Globals())
		slices.Sort(names)

		return slices.Compact(names)
	}

	segments := strings.Split(parent, ".")

	v, ok := it.Global(segments[0])
	if !ok {
		return nil
	}

	for _, seg := range segments[1:] {
		f := v.Fields()
		if f == nil {
			return nil
		}

		if v, ok = f.Get(seg); !ok {
			return nil
		}
	}

	if f := v.Fields(); f != nil {
		return f.Keys()
	}

	return nil
}

// isFunction reports whether name is callable.
func isFunction(it *lang.Interpreter, name string) bool {
	return slices.Contains(it.Natives(), name) || slices.Contains(it.Functions(), name)
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. When the current word is empty at the top level, it returns nil
// matches. When the word is empty after a dot (member access), it returns all
// members as matches.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	names []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		names = ctrlCommands
	} else {
		parent := parentPath(input, wordStart)
		names = candidates(m.it, parent)

		if word == "" {
			if parent == "" || len(names) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(names))
			for i, c := range names {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, names, wordStart, wordEnd
		}
	}

	if len(names) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, names), names, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing)
// uses the selected style.
func (m model) renderCandidateBar() string {
	if len(m.matches) == 0 || m.width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range m.matches {
		rendered := m.renderCandidate(match, m.tabActive && i == m.suggIdx)

		width := lipgloss.Width(rendered)
		if i > 0 {
			width += sepWidth
		}

		if i > 0 && i < len(m.matches)-1 && used+width+ellipsisWidth > m.width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += width
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Functions are displayed with a "()" suffix.
func (m model) renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if m.mode == modeEval && isFunction(m.it, match.Str) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
