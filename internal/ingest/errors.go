package ingest

import (
	"errors"
	"fmt"
)

// UnsupportedFormatError reports an upload whose filename matches no
// known format.
type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("file type %q is not supported", e.Filename)
}

// ParseError reports upload bytes the chosen parser rejected. The user
// message is deliberately generic; the cause is only logged
// operator-side.
type ParseError struct {
	Filename string
	Cause    error
}

func (e *ParseError) Error() string {
	return "an error occurred while processing the file"
}

func (e *ParseError) Unwrap() error { return e.Cause }

// FetchError reports a URL that could not be fetched or parsed. Unlike
// ParseError it surfaces the underlying detail to the user. The
// asymmetry matches the upload path's behavior in production; do not
// align the two without a product decision.
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("error loading from link: %v", e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// Kind labels an ingestion error for metrics.
func Kind(err error) string {
	var (
		uf *UnsupportedFormatError
		pe *ParseError
		fe *FetchError
	)
	switch {
	case errors.As(err, &uf):
		return "unsupported_format"
	case errors.As(err, &pe):
		return "parse_error"
	case errors.As(err, &fe):
		return "fetch_error"
	default:
		return "other"
	}
}
