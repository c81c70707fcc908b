package catalog

import "fmt"

// InvalidQueryError means the caller supplied no usable identifying input.
// It is fatal for the operation; retrying with the same input cannot succeed.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

// ParseError means a catalog response had none of the shapes the extraction
// profiles recognize. Distinct from an empty results page, which parses to an
// empty candidate list without error.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized catalog page: %s", e.Reason)
}
