// Package render turns raw note files (YAML front matter + Markdown body)
// into fully rendered notes.
//
// The pipeline runs a fixed sequence of passes: front-matter extraction,
// Markdown to HTML, code-block syntax highlighting, inline math, display
// math. Math is resolved after highlighting so literal $ characters inside
// highlighted code are never mistaken for math delimiters.
package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/wyatt915/treeblood"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/okvist/miniref/internal/assets"
	"github.com/okvist/miniref/internal/models"
)

// DefaultTheme is the highlight theme used when none is configured.
const DefaultTheme = "monokai"

var (
	codeBlockRe   = regexp.MustCompile(`(?s)<pre><code class="language-([^"]+)">(.*?)</code></pre>`)
	preBlockRe    = regexp.MustCompile(`(?s)<pre[^>]*>.*?</pre>`)
	inlineMathRe  = regexp.MustCompile(`\$([^$]+?)\$`)
	displayMathRe = regexp.MustCompile(`\$\$([^$]+?)\$\$`)
	mmlTagRe      = regexp.MustCompile(`<([A-Za-z][\w-]*)((?:\s+[\w:-]+="[^"]*")+)(\s*/?)>`)
	mmlAttrRe     = regexp.MustCompile(`[\w:-]+="[^"]*"`)
)

// frontMatter is the structured metadata block at the top of a note file.
// ID and Title are required; the rest default to empty.
type frontMatter struct {
	ID         string   `yaml:"id"`
	Title      string   `yaml:"title"`
	Tags       []string `yaml:"tags"`
	References []string `yaml:"references"`
}

// Renderer converts raw note content into rendered notes. The syntax and
// theme resources are loaded once and are immutable afterwards, so a single
// Renderer is safe for concurrent use.
type Renderer struct {
	md        goldmark.Markdown
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// New creates a Renderer using the named highlight theme. Unknown theme
// names fall back to chroma's default style.
func New(theme string) *Renderer {
	if theme == "" {
		theme = DefaultTheme
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		style:     styles.Get(theme),
		formatter: chromahtml.New(chromahtml.WithClasses(false)),
	}
}

// Render runs the full pipeline over raw file content. notePath is used for
// asset discovery and may be empty for content not backed by a file, in
// which case the note has no assets.
//
// A missing or malformed front-matter block is a hard failure. Per-fragment
// failures inside the body (unknown highlight language, invalid math) leave
// the original fragment intact.
func (r *Renderer) Render(raw []byte, notePath string) (*models.Note, error) {
	fm, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return nil, fmt.Errorf("render: markdown: %w", err)
	}

	content := buf.String()
	content = r.highlightCodeBlocks(content)
	content = renderInlineMath(content)
	content = renderDisplayMath(content)

	var as []models.Asset
	if notePath != "" {
		as = assets.Scan(notePath)
	}

	return &models.Note{
		ID:         fm.ID,
		Title:      fm.Title,
		Content:    content,
		Tags:       nonNil(fm.Tags),
		References: nonNil(fm.References),
		Assets:     nonNil(as),
	}, nil
}

// splitFrontMatter separates the YAML block between leading --- fences from
// the Markdown body. Unlike loosely structured vaults, a note here must
// carry front matter with id and title.
func splitFrontMatter(data []byte) (*frontMatter, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, "", fmt.Errorf("render: missing front matter")
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, "", fmt.Errorf("render: unterminated front matter")
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm frontMatter
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, "", fmt.Errorf("render: front matter: %w", err)
	}
	if fm.ID == "" || fm.Title == "" {
		return nil, "", fmt.Errorf("render: front matter requires id and title")
	}

	return &fm, body, nil
}

// highlightCodeBlocks rewrites language-tagged code blocks emitted by the
// Markdown pass into themed HTML. Blocks with an unknown language, or for
// which highlighting fails, are left untouched.
func (r *Renderer) highlightCodeBlocks(in string) string {
	return codeBlockRe.ReplaceAllStringFunc(in, func(m string) string {
		sub := codeBlockRe.FindStringSubmatch(m)
		lang := sub[1]
		source := html.UnescapeString(sub[2])

		lexer := lexers.Get(lang)
		if lexer == nil {
			return m
		}
		it, err := chroma.Coalesce(lexer).Tokenise(nil, source)
		if err != nil {
			return m
		}
		var buf bytes.Buffer
		if err := r.formatter.Format(&buf, r.style, it); err != nil {
			return m
		}
		return fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`, lang, buf.String())
	})
}

// renderInlineMath replaces $...$ spans with MathML. Spans inside <pre>
// blocks are code, not math; spans that fail to parse stay literal.
func renderInlineMath(in string) string {
	return mapOutsidePre(in, func(seg string) string {
		return inlineMathRe.ReplaceAllStringFunc(seg, func(m string) string {
			mml, ok := renderMath(m[1:len(m)-1], false)
			if !ok {
				return m
			}
			return mml
		})
	})
}

// renderDisplayMath replaces $$...$$ spans with block-level MathML, under
// the same exemptions as renderInlineMath.
func renderDisplayMath(in string) string {
	return mapOutsidePre(in, func(seg string) string {
		return displayMathRe.ReplaceAllStringFunc(seg, func(m string) string {
			mml, ok := renderMath(m[2:len(m)-2], true)
			if !ok {
				return m
			}
			return `<div class="math-display">` + mml + `</div>`
		})
	})
}

// mapOutsidePre applies f to every segment of in that lies outside a
// <pre>...</pre> block and stitches the result back together.
func mapOutsidePre(in string, f func(string) string) string {
	locs := preBlockRe.FindAllStringIndex(in, -1)
	if locs == nil {
		return f(in)
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(f(in[last:loc[0]]))
		b.WriteString(in[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(f(in[last:]))
	return b.String()
}

// renderMath renders a TeX expression to MathML. A span that contains HTML
// markup is not math; it shows up when a $ pair straddles highlighted code
// tokens.
func renderMath(expr string, display bool) (string, bool) {
	if strings.ContainsAny(expr, "<>") {
		return "", false
	}
	var (
		mml string
		err error
	)
	if display {
		mml, err = treeblood.DisplayStyle(expr, nil)
	} else {
		mml, err = treeblood.InlineStyle(expr, nil)
	}
	if err != nil {
		return "", false
	}
	return canonicalizeAttrs(mml), true
}

// canonicalizeAttrs sorts the attributes of every MathML opening tag.
// treeblood keeps element attributes in maps, so their serialized order
// varies between renders; identical expressions must produce identical
// bytes or repeated renders (and content-derived ETags) churn.
func canonicalizeAttrs(mml string) string {
	return mmlTagRe.ReplaceAllStringFunc(mml, func(m string) string {
		sub := mmlTagRe.FindStringSubmatch(m)
		attrs := mmlAttrRe.FindAllString(sub[2], -1)
		sort.Strings(attrs)
		return "<" + sub[1] + " " + strings.Join(attrs, " ") + sub[3] + ">"
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
