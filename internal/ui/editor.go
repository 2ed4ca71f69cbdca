package ui

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// The textarea sanitizes what it is given: tabs become four spaces, a
// carriage return becomes a newline, and other control runes and invalid
// UTF-8 are dropped. The buffer holds the file bytes, so edits made in the
// widget are mapped back onto the buffer instead of replacing it.

const editorTab = "    "

// segment ties one buffer rune (byte range) to the widget runes it shows as.
type segment struct {
	bufFrom, bufTo int
	wFrom, wTo     int
}

// editorText returns what the textarea shows for buf.
func editorText(buf string) string {
	text, _ := layout(buf)
	return text
}

// lossless reports whether the textarea can show buf byte for byte.
func lossless(buf string) bool {
	return editorText(buf) == buf
}

func layout(buf string) (string, []segment) {
	var sb strings.Builder
	segs := make([]segment, 0, len(buf))
	w := 0
	for i := 0; i < len(buf); {
		r, size := utf8.DecodeRuneInString(buf[i:])
		shown := ""
		switch {
		case r == utf8.RuneError:
		case r == '\r' || r == '\n':
			shown = "\n"
		case r == '\t':
			shown = editorTab
		case unicode.IsControl(r):
		default:
			shown = string(r)
		}
		sb.WriteString(shown)
		n := utf8.RuneCountInString(shown)
		segs = append(segs, segment{bufFrom: i, bufTo: i + size, wFrom: w, wTo: w + n})
		w += n
		i += size
	}
	return sb.String(), segs
}

// applyEdit replays the change between two textarea values onto buf. Buffer
// bytes outside the changed region are kept as they are. It returns false
// when before is not what the textarea shows for buf.
func applyEdit(buf, before, after string) (string, bool) {
	shown, segs := layout(buf)
	if shown != before {
		return buf, false
	}
	if before == after {
		return buf, true
	}
	b, a := []rune(before), []rune(after)

	p := 0
	for p < len(b) && p < len(a) && b[p] == a[p] {
		p++
	}
	s := 0
	for s < len(b)-p && s < len(a)-p && b[len(b)-1-s] == a[len(a)-1-s] {
		s++
	}
	wa, wb := p, len(b)-s

	// Widen the changed range to whole buffer runes so a tab or CR that was
	// partly edited is rewritten from what the widget now shows.
	start, wStart := len(buf), len(b)
	first := -1
	for k, seg := range segs {
		if seg.wTo > wa {
			first = k
			start, wStart = seg.bufFrom, seg.wFrom
			break
		}
	}
	end, wEnd := start, wStart
	switch {
	case first < 0:
	case wb > wa:
		for k := len(segs) - 1; k >= first; k-- {
			if segs[k].wFrom < wb {
				end, wEnd = segs[k].bufTo, segs[k].wTo
				break
			}
		}
	case segs[first].wFrom < wa:
		end, wEnd = segs[first].bufTo, segs[first].wTo
	}

	repl := string(a[wStart : len(a)-(len(b)-wEnd)])
	return buf[:start] + repl + buf[end:], true
}
