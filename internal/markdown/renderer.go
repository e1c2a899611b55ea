package markdown

import (
	"bytes"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"strings"
)

var renderStateKey = parser.NewContextKey()

// Rendered is the HTML of an article body together with the headings it contains.
type Rendered struct {
	HTML     string    `json:"html"`
	Headings []TocItem `json:"headings"`
}

// Renderer converts article bodies to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer for GitHub flavored Markdown (tables, strikethrough, task lists
// and autolinks) that passes raw HTML through.
// Headings get anchors, links open in a new browsing context and images load lazily.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
			),
			goldmark.WithParserOptions(
				parser.WithASTTransformers(
					util.Prioritized(&articleTransformer{}, 100),
				),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Render converts body; an empty body gives empty HTML.
func (r *Renderer) Render(body string) (Rendered, error) {
	if len(strings.TrimSpace(body)) == 0 {
		return Rendered{}, nil
	}

	state := &renderState{ids: NewHeadingIdGenerator()}
	ctx := parser.NewContext()
	ctx.Set(renderStateKey, state)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf, parser.WithContext(ctx)); err != nil {
		return Rendered{}, err
	}

	return Rendered{HTML: buf.String(), Headings: state.headings}, nil
}

// renderState lives for a single Render call.
type renderState struct {
	ids      *HeadingIdGenerator
	headings []TocItem
}

type articleTransformer struct{}

func (t *articleTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	state, ok := pc.Get(renderStateKey).(*renderState)
	if !ok {
		state = &renderState{ids: NewHeadingIdGenerator()}
	}
	source := reader.Source()

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			item := tocItem(node, source, state.ids)
			node.SetAttributeString("id", []byte(item.ID))
			state.headings = append(state.headings, item)
		case *ast.Link:
			setExternalLinkAttributes(node)
		case *ast.AutoLink:
			if node.AutoLinkType == ast.AutoLinkURL {
				setExternalLinkAttributes(node)
			}
		case *ast.Image:
			node.SetAttributeString("loading", []byte("lazy"))
		}
		return ast.WalkContinue, nil
	})
}

// tocItem names a heading with the next anchor of ids.
func tocItem(heading *ast.Heading, source []byte, ids *HeadingIdGenerator) TocItem {
	headingText := plainText(heading, source)
	return TocItem{ID: ids.Next(headingText), Text: headingText, Level: heading.Level}
}

func setExternalLinkAttributes(n ast.Node) {
	n.SetAttributeString("target", []byte("_blank"))
	n.SetAttributeString("rel", []byte("noopener noreferrer"))
}

// plainText concatenates the text a reader sees in n: link labels and image alt texts
// are kept, link destinations and raw HTML are not.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
