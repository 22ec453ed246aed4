package schema

// Alignment controls which side of a fixed-width window the value sits on.
type Alignment int

const (
	// AlignLeft places the value at the start of the window with trailing
	// fill. This is the format-wide default.
	AlignLeft Alignment = iota
	// AlignRight places the value at the end of the window with leading
	// fill.
	AlignRight
)

// Truncation controls which characters survive when a value exceeds the
// window width.
type Truncation int

const (
	// TruncateTrailing keeps the leading width characters. Default.
	TruncateTrailing Truncation = iota
	// TruncateLeading keeps the trailing width characters.
	TruncateLeading
)

// Window is a fixed-width column's layout: width, alignment, fill
// character, and truncation policy. A zero alignment, fill, or truncation
// inherits the format-wide default at merge time; width never does.
type Window struct {
	Width      int
	Alignment  Alignment
	Fill       rune
	Truncation Truncation
	hasAlign   bool
	hasTrunc   bool
}

// NewWindow creates a window of the given width using format defaults for
// alignment, fill, and truncation.
func NewWindow(width int) Window {
	return Window{Width: width}
}

// WithAlignment pins the window's alignment, overriding format defaults.
func (w Window) WithAlignment(a Alignment) Window {
	w.Alignment = a
	w.hasAlign = true
	return w
}

// WithFill pins the window's fill character, overriding format defaults.
func (w Window) WithFill(fill rune) Window {
	w.Fill = fill
	return w
}

// WithTruncation pins the window's truncation policy, overriding format
// defaults.
func (w Window) WithTruncation(t Truncation) Window {
	w.Truncation = t
	w.hasTrunc = true
	return w
}

// Merge resolves per-column settings against format-wide defaults. Width
// always comes from the column window.
func (w Window) Merge(defaults Window) Window {
	out := Window{Width: w.Width, Alignment: w.Alignment, Fill: w.Fill, Truncation: w.Truncation}
	if !w.hasAlign {
		out.Alignment = defaults.Alignment
	}
	if w.Fill == 0 {
		out.Fill = defaults.Fill
	}
	if out.Fill == 0 {
		out.Fill = ' '
	}
	if !w.hasTrunc {
		out.Truncation = defaults.Truncation
	}
	return out
}
