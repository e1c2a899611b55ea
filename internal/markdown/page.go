package markdown

// Page is everything an article page needs from the Markdown source.
type Page struct {
	Headline string    `json:"headline"`
	Body     string    `json:"-"`
	HTML     string    `json:"html"`
	Toc      []TocItem `json:"toc"`
}

// PreparePage renders content for an article page. The first level-1 heading becomes the headline
// (fallbackTitle when there is none) and is removed from the body; the excerpt is rendered when
// the content is empty. Toc lists the headings the renderer gave anchors to and is nil for a body
// without headings.
func (r *Renderer) PreparePage(content, excerpt, fallbackTitle string) (Page, error) {
	headline, ok := ExtractFirstH1(content)
	if !ok {
		headline = fallbackTitle
	}

	source := content
	if len(source) == 0 {
		source = excerpt
	}
	body := RemoveFirstH1(source)

	rendered, err := r.Render(body)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Headline: headline,
		Body:     body,
		HTML:     rendered.HTML,
		Toc:      rendered.Headings,
	}, nil
}
