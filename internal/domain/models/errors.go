package models

import "fmt"

// AggregationErrorKind classifies why an aggregation could not proceed.
type AggregationErrorKind string

const (
	// UnresolvableEntity: the input name/ticker maps to no known A-share.
	UnresolvableEntity AggregationErrorKind = "unresolvable_entity"
	// EmptyPrice: entity resolved but no price series could be fetched,
	// leaving nothing to score.
	EmptyPrice AggregationErrorKind = "empty_price"
)

// AggregationError aborts a pipeline run. Partial source failures never
// produce one; only the hard dependencies (resolution, price) do.
type AggregationError struct {
	Kind AggregationErrorKind
	Name string
	Err  error
}

func (e *AggregationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("aggregate %q: %s: %v", e.Name, e.Kind, e.Err)
	}
	return fmt.Sprintf("aggregate %q: %s", e.Name, e.Kind)
}

func (e *AggregationError) Unwrap() error { return e.Err }
