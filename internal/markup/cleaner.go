// Package markup cleans HTML fragments: it removes empty wrapper
// elements, unwraps divs that only hold comments, collapses runs of
// blank lines and re-flows indentation by tag depth.
//
// Cleaning is idempotent and never touches visible text content; the
// split pipeline treats it as an external collaborator behind the
// Cleaner interface.
package markup

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Cleaner is the cleanup contract: idempotent, visible text preserved.
type Cleaner interface {
	Clean(text string) (string, error)
}

// HTMLCleaner is the default Cleaner.
type HTMLCleaner struct {
	// IndentWidth is the number of spaces per nesting level.
	IndentWidth int
}

// NewHTMLCleaner returns a cleaner with the given indent width;
// values below 1 fall back to 2.
func NewHTMLCleaner(indentWidth int) *HTMLCleaner {
	if indentWidth < 1 {
		indentWidth = 2
	}
	return &HTMLCleaner{IndentWidth: indentWidth}
}

var (
	emptyDiv       = regexp.MustCompile(`<div[^>]*>\s*</div>`)
	emptySpan      = regexp.MustCompile(`<span[^>]*>\s*</span>`)
	commentOnlyDiv = regexp.MustCompile(`<div[^>]*>\s*<!--.*?-->\s*</div>`)
	blankRun       = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// voidElements per the HTML standard: tags that never take a closing
// tag and therefore never open a nesting level.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// Clean removes redundant wrappers and re-indents the fragment.
func (c *HTMLCleaner) Clean(text string) (string, error) {
	// Dropping a wrapper can leave its parent empty, so strip to a
	// fixpoint.
	for {
		next := emptyDiv.ReplaceAllString(text, "")
		next = emptySpan.ReplaceAllString(next, "")
		next = commentOnlyDiv.ReplaceAllString(next, "")
		if next == text {
			break
		}
		text = next
	}

	text = blankRun.ReplaceAllString(text, "\n\n")
	return c.reindent(text), nil
}

// reindent re-flows indentation by tag depth. Each line's net depth
// change is computed from its tokens, so a one-line element like
// <h1>Title</h1> stays level.
func (c *HTMLCleaner) reindent(text string) string {
	unit := strings.Repeat(" ", c.IndentWidth)
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	depth := 0

	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			out = append(out, "")
			continue
		}

		opens, closes, leadingClose := tokenizeLine(stripped)
		if leadingClose {
			depth = max(0, depth-1)
		}
		out = append(out, strings.Repeat(unit, depth)+stripped)

		net := opens - closes
		if leadingClose {
			// The dedent already consumed one close.
			net++
		}
		depth = max(0, depth+net)
	}
	return strings.Join(out, "\n")
}

// tokenizeLine counts opening and closing tags on a single line and
// reports whether the line begins with a closing tag. Void and
// self-closing elements, comments and doctypes contribute nothing.
func tokenizeLine(line string) (opens, closes int, leadingClose bool) {
	z := html.NewTokenizer(strings.NewReader(line))
	first := true
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return opens, closes, leadingClose
		}
		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			if !voidElements[string(name)] {
				opens++
			}
		case html.EndTagToken:
			closes++
			if first && strings.HasPrefix(line, "</") {
				leadingClose = true
			}
		}
		first = false
	}
}
