package fixedwidth

import (
	"strings"

	"github.com/vandenbergjp/FlatFiles/pkg/schema"
)

// fit pads or truncates text to exactly the window width. Shorter values
// are filled on the side opposite the alignment; longer values lose
// characters per the truncation policy: trailing truncation keeps the
// leading width characters, leading truncation keeps the trailing ones.
func fit(text string, w schema.Window) string {
	runes := []rune(text)
	switch {
	case len(runes) == w.Width:
		return text
	case len(runes) > w.Width:
		if w.Truncation == schema.TruncateLeading {
			return string(runes[len(runes)-w.Width:])
		}
		return string(runes[:w.Width])
	default:
		fill := strings.Repeat(string(w.Fill), w.Width-len(runes))
		if w.Alignment == schema.AlignRight {
			return fill + text
		}
		return text + fill
	}
}

// unpad strips the fill characters a write with the same window would have
// added: trailing fill for left alignment, leading fill for right.
func unpad(text string, w schema.Window) string {
	if w.Alignment == schema.AlignRight {
		return strings.TrimLeft(text, string(w.Fill))
	}
	return strings.TrimRight(text, string(w.Fill))
}
