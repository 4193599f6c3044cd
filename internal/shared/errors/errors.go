package errors

import "errors"

var (
	ErrFeedNotFound    = errors.New("feed not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrArticleNotFound = errors.New("article not found")
	ErrArticleIO       = errors.New("article storage i/o failure")
)
