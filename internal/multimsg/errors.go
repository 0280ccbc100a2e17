package multimsg

import "errors"

var (
	ErrMalformedFraming  = errors.New("malformed framing")
	ErrDecryptionFailure = errors.New("decryption failure")
	ErrSchemaDecode      = errors.New("schema decode failure")
	ErrEmptyField        = errors.New("empty field")
	ErrMissingReference  = errors.New("missing reference")
	ErrInvalidText       = errors.New("invalid text")
	ErrIO                = errors.New("io error")
	ErrTooDeep           = errors.New("forward nesting too deep")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrMalformedFraming, "malformed_framing"},
	{ErrDecryptionFailure, "decryption_failure"},
	{ErrSchemaDecode, "schema_decode"},
	{ErrEmptyField, "empty_field"},
	{ErrMissingReference, "missing_reference"},
	{ErrInvalidText, "invalid_text"},
	{ErrIO, "io"},
	{ErrTooDeep, "too_deep"},
}

// Kind returns a stable label for err, "" for nil and "other" for errors
// that did not originate in this package.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "other"
}
