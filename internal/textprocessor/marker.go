package textprocessor

import "strings"

// Grammar recovers a referenced item name from raw markup.
type Grammar func(raw string) (string, bool)

// Extractor tries its grammars in order, the first match wins.
type Extractor struct {
	grammars []Grammar
}

var (
	// xml card markup of the multi-message template
	AttributeGrammar Grammar = delimited(`m_fileName="`, `"`)
	// json card markup that has been escaped into a string once more
	EscapedJSONGrammar Grammar = delimited(`\"filename\":\"`, `\"`)

	DefaultExtractor = NewExtractor(AttributeGrammar, EscapedJSONGrammar)
)

func NewExtractor(grammars ...Grammar) *Extractor {
	return &Extractor{grammars: grammars}
}

// plain substring search as the surrounding markup is not reliably well-formed,
// the last occurrence of prefix counts
func delimited(prefix, suffix string) Grammar {
	return func(raw string) (string, bool) {
		start := strings.LastIndex(raw, prefix)
		if start < 0 {
			return "", false
		}
		name, _, ok := strings.Cut(raw[start+len(prefix):], suffix)
		if !ok || name == "" {
			return "", false
		}
		return name, true
	}
}

func (e *Extractor) Find(raw string) (string, bool) {
	for _, grammar := range e.grammars {
		if name, ok := grammar(raw); ok {
			return name, true
		}
	}
	return "", false
}

// FindReference returns the item name a forward card points to.
func FindReference(raw string) (string, bool) {
	return DefaultExtractor.Find(raw)
}
