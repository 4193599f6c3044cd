package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/reshetovitsme/rss-reader/internal/modules/article/domain"
	"github.com/reshetovitsme/rss-reader/internal/modules/article/repository"
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	sharedErrors "github.com/reshetovitsme/rss-reader/internal/shared/errors"
	"github.com/reshetovitsme/rss-reader/internal/shared/metrics"
	"github.com/samber/oops"
)

const (
	// ArticlesDir is the directory under the storage root holding markdown files
	// and the index.
	ArticlesDir = "articles"
	// ImagesDir is relative to ArticlesDir.
	ImagesDir = "images"

	untitled = "No Title"
)

// Localizer rewrites remote image references in markdown.
type Localizer interface {
	Localize(ctx context.Context, markdown string) (string, error)
}

// Store persists feed items as markdown files and records each save in the index.
type Store struct {
	root      string
	index     repository.Index
	localizer Localizer
	converter *md.Converter
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Store rooted at root. localizer may be nil to keep remote images.
func New(root string, index repository.Index, localizer Localizer) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, ArticlesDir), 0755); err != nil {
		return nil, ioError(err, "root", root, "context", "failed to create storage directory")
	}
	return &Store{
		root:      root,
		index:     index,
		localizer: localizer,
		converter: md.NewConverter("", true, nil),
		logger:    slog.Default(),
		now:       time.Now,
	}, nil
}

// SetLogger sets the logger
func (s *Store) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Root returns the storage root.
func (s *Store) Root() string {
	return s.root
}

// ImagesPath returns the directory localized images are written to.
func (s *Store) ImagesPath() string {
	return filepath.Join(s.root, ArticlesDir, ImagesDir)
}

// Save stores item as markdown and appends an index record. The markdown file is
// content-addressed and written once; every call appends a new record.
func (s *Store) Save(ctx context.Context, sourceName, sourceURL string, item feedDomain.FeedItem) (domain.ArticleRecord, string, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = untitled
	}

	hashTime := ""
	fetchedAt := s.now().UTC()
	if item.PublishedAt != nil {
		fetchedAt = item.PublishedAt.UTC()
		hashTime = fetchedAt.Format(time.RFC3339)
	}

	name := ArticleFileName(sourceName, sourceURL, title, item.Link, hashTime)
	rel := path.Join(ArticlesDir, name)
	abs := filepath.Join(s.root, filepath.FromSlash(rel))

	markdown, err := s.readOrWrite(ctx, abs, item)
	if err != nil {
		return domain.ArticleRecord{}, "", err
	}

	record := domain.ArticleRecord{
		FetchedAt:   fetchedAt,
		ArticleName: title,
		SourceName:  sourceName,
		StoragePath: rel,
	}
	err = s.index.Append(record)
	metrics.ObserveAppend(err)
	if err != nil {
		return domain.ArticleRecord{}, "", ioError(err, "path", rel, "context", "failed to append index record")
	}

	s.logger.Debug("Article stored", "source", sourceName, "title", title, "path", rel)
	return record, markdown, nil
}

// SaveAll stores every item in order. Per-item failures are logged and joined
// into the returned error; the remaining items are still stored.
func (s *Store) SaveAll(ctx context.Context, sourceName, sourceURL string, items []feedDomain.FeedItem) ([]domain.ArticleRecord, error) {
	records := make([]domain.ArticleRecord, 0, len(items))
	var errs []error
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		record, _, err := s.Save(ctx, sourceName, sourceURL, item)
		if err != nil {
			s.logger.Error("Failed to store article", "source", sourceName, "title", item.Title, "error", err)
			errs = append(errs, err)
			continue
		}
		records = append(records, record)
	}
	return records, errors.Join(errs...)
}

// Lookup returns the markdown of the most recent record matching name and, when
// sourceName is not empty, sourceName. ok is false when nothing matches.
func (s *Store) Lookup(name, sourceName string) (markdown string, ok bool, err error) {
	records, err := s.index.FindByName(name)
	if err != nil {
		return "", false, ioError(err, "name", name, "context", "failed to search index")
	}

	for i := len(records) - 1; i >= 0; i-- {
		if sourceName != "" && records[i].SourceName != sourceName {
			continue
		}
		markdown, err := s.Read(records[i])
		if errors.Is(err, sharedErrors.ErrArticleNotFound) {
			s.logger.Warn("Index record points at a missing file", "path", records[i].StoragePath)
			continue
		}
		if err != nil {
			return "", false, err
		}
		return markdown, true, nil
	}

	return "", false, nil
}

// Records lists the index in append order.
func (s *Store) Records() ([]domain.ArticleRecord, error) {
	records, err := s.index.List()
	if err != nil {
		return nil, ioError(err, "context", "failed to list index")
	}
	return records, nil
}

// Find lists the records whose article name equals name, in append order.
func (s *Store) Find(name string) ([]domain.ArticleRecord, error) {
	records, err := s.index.FindByName(name)
	if err != nil {
		return nil, ioError(err, "name", name, "context", "failed to search index")
	}
	return records, nil
}

// Read loads the markdown a record points at.
func (s *Store) Read(record domain.ArticleRecord) (string, error) {
	abs, err := s.resolve(record.StoragePath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return "", oops.With("path", record.StoragePath).Wrap(sharedErrors.ErrArticleNotFound)
	}
	if err != nil {
		return "", ioError(err, "path", record.StoragePath, "context", "failed to read article")
	}
	return string(data), nil
}

func (s *Store) readOrWrite(ctx context.Context, abs string, item feedDomain.FeedItem) (string, error) {
	if data, err := os.ReadFile(abs); err == nil {
		return string(data), nil
	}

	markdown, err := s.convert(item.Body())
	if err != nil {
		return "", err
	}
	if s.localizer != nil {
		markdown, err = s.localizer.Localize(ctx, markdown)
		if err != nil {
			return "", ioError(err, "path", abs, "context", "failed to localize images")
		}
	}

	if err := writeFileAtomic(abs, []byte(markdown)); err != nil {
		return "", ioError(err, "path", abs, "context", "failed to write article")
	}
	return markdown, nil
}

func (s *Store) convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	markdown, err := s.converter.ConvertString(html)
	if err != nil {
		// malformed markup is kept verbatim rather than dropped
		s.logger.Warn("Failed to convert article HTML", "error", err)
		return html, nil
	}
	return markdown, nil
}

// resolve maps a record path onto the storage root, rejecting paths that escape it.
func (s *Store) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", oops.With("path", rel).Wrap(sharedErrors.ErrArticleNotFound)
	}
	return filepath.Join(s.root, clean), nil
}

// ArticleFileName derives the content-addressed markdown file name of an item.
func ArticleFileName(sourceName, sourceURL, title, link, published string) string {
	return hashString(fmt.Sprintf("%s|%s|%s|%s|%s", sourceName, sourceURL, title, link, published)) + ".md"
}

func ioError(err error, kv ...any) error {
	return oops.With(kv...).Wrap(fmt.Errorf("%w: %w", sharedErrors.ErrArticleIO, err))
}
