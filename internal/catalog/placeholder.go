package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Format substitutes positional placeholders ({0}, {1}, ...) with args.
// "{{" and "}}" produce literal braces. Placeholders without a matching
// argument, and anything that is not a plain index, are copied unchanged.
func Format(s string, args ...any) string {
	if !strings.ContainsAny(s, "{}") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			n, end, ok := index(s, i)
			if ok && n < len(args) {
				b.WriteString(fmt.Sprint(args[n]))
				i = end
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Placeholders returns the sorted, de-duplicated positional indexes in s.
func Placeholders(s string) []int {
	seen := map[int]struct{}{}
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '{' {
			i++
			continue
		}
		if n, end, ok := index(s, i); ok {
			seen[n] = struct{}{}
			i = end
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// PlaceholderTokens returns the placeholders of s in their literal "{n}" form.
func PlaceholderTokens(s string) []string {
	idx := Placeholders(s)
	if idx == nil {
		return nil
	}
	out := make([]string, len(idx))
	for i, n := range idx {
		out[i] = "{" + strconv.Itoa(n) + "}"
	}
	return out
}

// GoTemplate rewrites positional placeholders into text/template actions
// ({0} becomes {{.Arg0}}) and Qt's %n plural count into {{.PluralCount}}.
// Escaped braces collapse to single literal braces.
func GoTemplate(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			if n, end, ok := index(s, i); ok {
				b.WriteString("{{.Arg" + strconv.Itoa(n) + "}}")
				i = end
				continue
			}
			b.WriteByte(c)
		case c == '%' && i+1 < len(s) && s[i+1] == 'n':
			b.WriteString("{{.PluralCount}}")
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// index parses "{digits}" starting at s[start] == '{'. It returns the index
// value and the position of the closing brace.
func index(s string, start int) (int, int, bool) {
	end := strings.IndexByte(s[start+1:], '}')
	if end <= 0 {
		return 0, 0, false
	}
	end += start + 1
	digits := s[start+1 : end]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, false
	}
	return n, end, true
}

func replaceCount(s string, n int) string {
	return strings.ReplaceAll(s, "%n", strconv.Itoa(n))
}
