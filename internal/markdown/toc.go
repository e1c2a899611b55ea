package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// DefaultScrollOffset is added to the scroll position before picking the active heading.
const DefaultScrollOffset = 100

// parses with the renderer's rules so both see the same headings
var outlineParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

type TocItem struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// ExtractTableOfContents lists the headings of content in document order, ATX and setext alike,
// including headings nested in lists and block quotes. Code blocks and raw HTML contribute none.
// Inline links are reduced to their text, the anchors follow the same numbering as the renderer.
// Nil is returned when there are no headings.
func ExtractTableOfContents(content string) []TocItem {
	source := []byte(content)
	doc := outlineParser.Parse(text.NewReader(source))

	var items []TocItem
	ids := NewHeadingIdGenerator()
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		items = append(items, tocItem(heading, source, ids))
		return ast.WalkSkipChildren, nil
	})

	return items
}

// HeadingOffset is the vertical position of a rendered heading.
type HeadingOffset struct {
	ID  string  `json:"id"`
	Top float64 `json:"top"`
}

// ActiveHeading picks the heading a reader is currently in: the last one, in document order,
// whose top is at or above scrollY+offset. It returns false when the reader is above all headings.
func ActiveHeading(headings []HeadingOffset, scrollY, offset float64) (string, bool) {
	threshold := scrollY + offset
	for i := len(headings) - 1; i >= 0; i-- {
		if headings[i].Top <= threshold {
			return headings[i].ID, true
		}
	}
	return "", false
}
