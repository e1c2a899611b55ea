package markdown

import "strings"

// codeFence tracks whether a line scan is inside a fenced code block.
type codeFence struct {
	char   byte
	length int
}

func (f *codeFence) open() bool {
	return f.length > 0
}

// consume feeds the next line and reports whether it belongs to a fenced code block,
// including the opening and closing fence lines.
func (f *codeFence) consume(line string) bool {
	char, length, rest := fenceMarker(line)

	if f.open() {
		if char == f.char && length >= f.length && len(strings.TrimSpace(rest)) == 0 {
			f.char, f.length = 0, 0
		}
		return true
	}

	if length == 0 {
		return false
	}
	// backtick fences may not carry backticks in their info string
	if char == '`' && strings.Contains(rest, "`") {
		return false
	}
	f.char, f.length = char, length
	return true
}

// fenceMarker returns the fence character and run length of a fence line, or a zero length.
func fenceMarker(line string) (byte, int, string) {
	line = strings.TrimRight(line, "\r")

	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	if indent > 3 || indent == len(line) {
		return 0, 0, ""
	}

	char := line[indent]
	if char != '`' && char != '~' {
		return 0, 0, ""
	}

	end := indent
	for end < len(line) && line[end] == char {
		end++
	}
	if end-indent < 3 {
		return 0, 0, ""
	}
	return char, end - indent, line[end:]
}
