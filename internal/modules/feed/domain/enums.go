//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// FetchErrorKind classifies why a feed could not be turned into items.
// Empty is never raised by the aggregator: a well-formed feed with zero
// items is returned as an empty slice.
// ENUM(network,parse,empty)
type FetchErrorKind string
