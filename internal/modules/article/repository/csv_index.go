package repository

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/reshetovitsme/rss-reader/internal/modules/article/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const IndexFileName = "index.csv"

// Header is the frozen column order of the index file.
var Header = []string{"time", "article_name", "rss_subscription_name", "path"}

// CSVIndex implements Index as a CSV log with one newline-terminated record per line.
// Appends within a process are serialized; other processes must not write the same
// file concurrently. Readers only consider complete lines, so they tolerate an
// append in progress.
type CSVIndex struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewCSVIndex opens (creating if needed) dir/index.csv and writes the header when
// the file is empty.
func NewCSVIndex(dir string) (*CSVIndex, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, oops.With("dir", dir, "context", "failed to create article directory").Wrap(err)
	}

	s := &CSVIndex{
		path:   filepath.Join(dir, IndexFileName),
		logger: slog.Default(),
	}

	info, err := os.Stat(s.path)
	switch {
	case os.IsNotExist(err) || (err == nil && info.Size() == 0):
		line, err := encodeLine(Header)
		if err != nil {
			return nil, err
		}
		if err := s.appendLine(line); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, oops.With("path", s.path, "context", "failed to stat index").Wrap(err)
	}

	return s, nil
}

// SetLogger sets the logger
func (s *CSVIndex) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Path returns the index file location.
func (s *CSVIndex) Path() string {
	return s.path
}

// Append writes one complete record and syncs it before returning.
func (s *CSVIndex) Append(record domain.ArticleRecord) error {
	line, err := encodeLine([]string{
		record.FetchedAt.UTC().Format(time.RFC3339Nano),
		record.ArticleName,
		record.SourceName,
		filepath.ToSlash(record.StoragePath),
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLine(line)
}

// List returns every well-formed record in append order. Malformed lines and a
// trailing line without its newline are skipped.
func (s *CSVIndex) List() ([]domain.ArticleRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.ArticleRecord{}, nil
		}
		return nil, oops.With("path", s.path, "context", "failed to read index").Wrap(err)
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < len(data)-1 {
		s.logger.Warn("Ignoring incomplete trailing index line", "path", s.path)
	}
	if end < 0 {
		return []domain.ArticleRecord{}, nil
	}

	lines := strings.Split(string(data[:end]), "\n")
	records := make([]domain.ArticleRecord, 0, len(lines))
	for n, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		record, ok := decodeLine(line)
		if !ok {
			if n != 0 {
				s.logger.Warn("Skipping malformed index line", "path", s.path, "line", n+1)
			}
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// FindByName returns every record whose article name equals name, in append order.
func (s *CSVIndex) FindByName(name string) ([]domain.ArticleRecord, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	return lo.Filter(records, func(r domain.ArticleRecord, _ int) bool {
		return r.ArticleName == name
	}), nil
}

func (s *CSVIndex) appendLine(line []byte) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return oops.With("path", s.path, "context", "failed to open index for append").Wrap(err)
	}
	defer f.Close()

	torn, err := endsWithoutNewline(s.path)
	if err != nil {
		return err
	}
	if torn {
		// keep a torn line from a crashed writer on its own line
		line = append([]byte{'\n'}, line...)
	}

	if _, err := f.Write(line); err != nil {
		return oops.With("path", s.path, "context", "failed to append index line").Wrap(err)
	}
	if err := f.Sync(); err != nil {
		return oops.With("path", s.path, "context", "failed to sync index").Wrap(err)
	}
	return nil
}

func endsWithoutNewline(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, oops.With("path", path).Wrap(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, oops.With("path", path).Wrap(err)
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
		return false, oops.With("path", path).Wrap(err)
	}
	return last[0] != '\n', nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func encodeLine(fields []string) ([]byte, error) {
	clean := lo.Map(fields, func(f string, _ int) string {
		return lineBreaks.Replace(f)
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(clean); err != nil {
		return nil, oops.With("context", "failed to encode index record").Wrap(err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, oops.With("context", "failed to encode index record").Wrap(err)
	}
	return buf.Bytes(), nil
}

func decodeLine(line string) (domain.ArticleRecord, bool) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = len(Header)
	fields, err := r.Read()
	if err != nil {
		return domain.ArticleRecord{}, false
	}
	if slices.Equal(fields, Header) {
		return domain.ArticleRecord{}, false
	}

	t, err := time.Parse(time.RFC3339Nano, fields[0])
	if err != nil {
		return domain.ArticleRecord{}, false
	}

	return domain.ArticleRecord{
		FetchedAt:   t,
		ArticleName: fields[1],
		SourceName:  fields[2],
		StoragePath: fields[3],
	}, true
}
