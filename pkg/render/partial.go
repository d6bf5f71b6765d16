package render

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	partialLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "String", Pattern: `"[^"]*"|'[^']*'`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.]*`},
		{Name: "Punct", Pattern: `[^\sA-Za-z0-9_"']`},
	})

	partialParser = participle.MustBuild[partialCall](
		participle.Lexer(partialLexer),
		participle.Elide("Whitespace"),
	)
)

// partialCall is the only directive form that is expanded: partial with a
// single quoted literal.
type partialCall struct {
	View string `parser:"'partial' '(' @String ')'"`
}

// partialPattern matches partial(...) actions between the engine delimiters.
// The call itself is validated by partialParser.
func partialPattern(d Delims) *regexp.Regexp {
	mod := ""
	if d.Modifiers != "" {
		mod = "[" + regexp.QuoteMeta(d.Modifiers) + "]?"
	}
	return regexp.MustCompile(regexp.QuoteMeta(d.Open) + mod + `\s*(partial\s*\(.*?\))\s*` + mod + regexp.QuoteMeta(d.Close))
}

// parsePartial extracts the view named by a partial call. ok is false when
// the call is not a single string literal.
func parsePartial(call string) (view string, ok bool) {
	c, err := partialParser.ParseString("", call)
	if err != nil {
		return "", false
	}
	return c.View[1 : len(c.View)-1], true
}

// expandPartials replaces every partial directive in text with the expanded
// contents of the referenced view. chain holds the views currently being
// expanded, outermost first; a directive naming any of them expands to
// nothing. Unreadable partials are logged and expand to nothing.
func (p *Pipeline) expandPartials(text string, chain []string) string {
	return p.partialRE.ReplaceAllStringFunc(text, func(directive string) string {
		m := p.partialRE.FindStringSubmatch(directive)
		view, ok := parsePartial(m[1])
		if !ok {
			return directive
		}
		if view == "" {
			return ""
		}
		view = cleanView(view)
		if slices.Contains(chain, view) {
			return ""
		}

		raw, err := p.readView(view)
		if err != nil {
			p.logger.Warn("Cannot load view partial",
				"view", chain[len(chain)-1],
				"partial", view,
				"path", p.viewPath(view),
				"error", err)
			return ""
		}
		return p.expandPartials(raw, append(slices.Clip(chain), view))
	})
}

// cleanView returns the canonical form of a view identifier, relative to the
// root: "./head.html", "/head.html" and "sub/../head.html" all name head.html.
func cleanView(view string) string {
	return strings.TrimLeft(path.Clean("/"+view), "/")
}

// readView reads a view's source from the pipeline's filesystem.
func (p *Pipeline) readView(view string) (string, error) {
	b, err := fs.ReadFile(p.fsys, cleanView(view))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %w", ErrViewNotFound, err)
		}
		return "", err
	}
	return string(b), nil
}
