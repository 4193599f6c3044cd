package domain

import (
	"errors"
	"fmt"
)

// FetchError is a per-source failure. It never aborts a batch.
type FetchError struct {
	Kind   FetchErrorKind
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s error fetching %q: %v", e.Kind, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func NewNetworkError(source string, err error) *FetchError {
	return &FetchError{Kind: FetchErrorKindNetwork, Source: source, Err: err}
}

func NewParseError(source string, err error) *FetchError {
	return &FetchError{Kind: FetchErrorKindParse, Source: source, Err: err}
}

// AsFetchError extracts a *FetchError from err, classifying anything else as a
// network failure.
func AsFetchError(source string, err error) *FetchError {
	if err == nil {
		return nil
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr
	}
	return NewNetworkError(source, err)
}
