package schema

// NullHandler decides whether a raw string denotes null when reading and
// which string represents null when writing.
type NullHandler interface {
	// IsNull reports whether the raw text denotes a null value.
	IsNull(text string) bool
	// NullText returns the text written for a null value.
	NullText() string
}

// defaultNullHandler treats the empty string as null.
type defaultNullHandler struct{}

func (defaultNullHandler) IsNull(text string) bool { return text == "" }
func (defaultNullHandler) NullText() string        { return "" }

// DefaultNullHandler returns the handler that treats the empty string as
// the null sentinel.
func DefaultNullHandler() NullHandler {
	return defaultNullHandler{}
}

// constantNullHandler uses a fixed sentinel text, e.g. "NULL" or "\\N".
type constantNullHandler struct {
	text string
}

func (h constantNullHandler) IsNull(text string) bool { return text == h.text }
func (h constantNullHandler) NullText() string        { return h.text }

// ConstantNullHandler returns a handler that recognizes and writes the
// given sentinel text for null values.
func ConstantNullHandler(text string) NullHandler {
	return constantNullHandler{text: text}
}
