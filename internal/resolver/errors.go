package resolver

import "fmt"

// NoResultsError means the search, filtering and detail phases produced
// nothing usable. It covers both "the catalog returned nothing" and "every
// candidate was filtered or failed" since the caller's remedy is the same:
// broaden the search, adjust the blacklist or supply an identifier.
type NoResultsError struct {
	Query string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("no usable results for %s", e.Query)
}
