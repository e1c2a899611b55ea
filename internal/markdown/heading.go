package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// FallbackHeadingId is used for headings whose text normalizes to nothing.
const FallbackHeadingId = "section"

var (
	// ASCII word characters, CJK unified ideographs, whitespace and hyphens survive
	disallowedIdChars = regexp.MustCompile(`[^\w\x{4e00}-\x{9fff}\s\v\p{Z}\x{feff}-]`)
	whitespaceRuns    = regexp.MustCompile(`[\s\v\p{Z}\x{feff}]+`)

	markdownLink = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)

	atxH1       = regexp.MustCompile(`^#[ \t]+(.+)$`)
	atxAny      = regexp.MustCompile(`^ {0,3}#{1,6}([ \t]|$)`)
	setextH1Bar = regexp.MustCompile(`^ {0,3}=+[ \t]*$`)
)

// NormalizeHeadingId turns heading text into an anchor: lower case, anything but word characters,
// CJK ideographs, whitespace and hyphens removed, whitespace runs replaced by a single hyphen.
func NormalizeHeadingId(text string) string {
	id := strings.ToLower(text)
	id = disallowedIdChars.ReplaceAllString(id, "")
	return whitespaceRuns.ReplaceAllString(id, "-")
}

// HeadingIdGenerator hands out the anchors of one document.
// The first heading with a given base id keeps it, later ones get "-1", "-2", ... in order of appearance.
// An id is never handed out twice, even if a heading text happens to equal an earlier suffixed id.
//
// The renderer and the table of contents each run their own generator over the same headings,
// so both arrive at the same ids.
type HeadingIdGenerator struct {
	counts map[string]int
	issued map[string]struct{}
}

func NewHeadingIdGenerator() *HeadingIdGenerator {
	return &HeadingIdGenerator{
		counts: make(map[string]int),
		issued: make(map[string]struct{}),
	}
}

func (g *HeadingIdGenerator) Next(text string) string {
	base := NormalizeHeadingId(text)
	if len(base) == 0 {
		base = FallbackHeadingId
	}

	n := g.counts[base]
	id := suffixed(base, n)
	for {
		if _, taken := g.issued[id]; !taken {
			break
		}
		n++
		id = suffixed(base, n)
	}

	g.counts[base] = n + 1
	g.issued[id] = struct{}{}
	return id
}

func suffixed(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// StripMarkdownLinks replaces inline links "[text](url)" by their text.
func StripMarkdownLinks(text string) string {
	return markdownLink.ReplaceAllString(text, "$1")
}

// RemoveFirstH1 deletes the first level-1 heading, the one ExtractFirstH1 reports: its line for an
// ATX heading, the text and underline for a setext heading. The page title is rendered from that
// heading separately.
func RemoveFirstH1(content string) string {
	lines := strings.Split(content, "\n")

	start, end, _, ok := firstH1(lines)
	if !ok {
		return content
	}
	return strings.Join(append(lines[:start:start], lines[end+1:]...), "\n")
}

// ExtractFirstH1 returns the text of the first level-1 heading outside of fenced code.
// An ATX heading ("# Title") anywhere wins over a setext heading ("Title\n===").
func ExtractFirstH1(content string) (string, bool) {
	_, _, text, ok := firstH1(strings.Split(content, "\n"))
	return text, ok
}

// firstH1 locates the first level-1 heading as the range of lines it spans.
// A setext heading counts only when its text is a paragraph of one line.
func firstH1(lines []string) (start, end int, text string, ok bool) {
	trimmed := make([]string, len(lines))
	for i := range lines {
		trimmed[i] = strings.TrimRight(lines[i], "\r")
	}

	var fence codeFence
	for i, line := range trimmed {
		if fence.consume(line) {
			continue
		}
		if m := atxH1.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return i, i, strings.TrimSpace(m[1]), true
		}
	}

	fence = codeFence{}
	for i := 0; i+1 < len(trimmed); i++ {
		if fence.consume(trimmed[i]) {
			continue
		}
		if !setextH1Bar.MatchString(trimmed[i+1]) || !setextText(trimmed, i) {
			continue
		}
		return i, i + 1, strings.TrimSpace(trimmed[i]), true
	}

	return 0, 0, "", false
}

func setextText(lines []string, i int) bool {
	line := lines[i]
	if len(strings.TrimSpace(line)) == 0 || atxAny.MatchString(line) || strings.HasPrefix(line, "    ") {
		return false
	}
	if _, length, _ := fenceMarker(line); length > 0 {
		return false
	}
	if i == 0 {
		return true
	}
	previous := lines[i-1]
	_, fenceLength, _ := fenceMarker(previous)
	return len(strings.TrimSpace(previous)) == 0 || atxAny.MatchString(previous) || fenceLength > 0
}
