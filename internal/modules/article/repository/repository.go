package repository

import (
	"github.com/reshetovitsme/rss-reader/internal/modules/article/domain"
)

// Index is the append-only article log. Records are never reordered or rewritten.
type Index interface {
	Append(record domain.ArticleRecord) error
	List() ([]domain.ArticleRecord, error)
	FindByName(name string) ([]domain.ArticleRecord, error)
}
