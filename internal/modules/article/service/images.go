package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// ImagePrefix is the URL path under which localized images are served.
const ImagePrefix = "/images/"

var (
	markdownImage = regexp.MustCompile(`!\[[^\]]*]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	htmlImage     = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["'][^>]*>`)
	imgTag        = regexp.MustCompile(`<img[^>]*>`)
	srcAttr       = regexp.MustCompile(`src=["']([^"']+)["']`)
	altAttr       = regexp.MustCompile(`alt=["']([^"']*)["']`)
)

// ImageLocalizer downloads remote images referenced by an article into a local
// directory and rewrites the references to ImagePrefix paths.
type ImageLocalizer struct {
	dir        string
	client     *http.Client
	maxRetries uint64
	logger     *slog.Logger
}

func NewImageLocalizer(dir string, client *http.Client) (*ImageLocalizer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, oops.With("dir", dir, "context", "failed to create image directory").Wrap(err)
	}
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ImageLocalizer{
		dir:        dir,
		client:     client,
		maxRetries: 2,
		logger:     slog.Default(),
	}, nil
}

// SetLogger sets the logger
func (l *ImageLocalizer) SetLogger(logger *slog.Logger) {
	l.logger = logger
}

// Localize rewrites every downloadable image reference in markdown. Images that
// cannot be fetched keep their remote URL. Inline <img> tags always become
// markdown images.
func (l *ImageLocalizer) Localize(ctx context.Context, markdown string) (string, error) {
	urls := extractImageURLs(markdown)
	if len(urls) == 0 {
		return markdown, nil
	}

	replacements := make(map[string]string, len(urls))
	for _, u := range urls {
		local, ok, err := l.download(ctx, u)
		if err != nil {
			return "", err
		}
		if ok {
			replacements[u] = local
		}
	}

	updated := imgTag.ReplaceAllStringFunc(markdown, func(tag string) string {
		src := firstGroup(srcAttr, tag)
		alt := firstGroup(altAttr, tag)
		if local, ok := replacements[src]; ok {
			src = local
		}
		return fmt.Sprintf("![%s](%s)", alt, src)
	})

	updated = markdownImage.ReplaceAllStringFunc(updated, func(m string) string {
		src := firstGroup(markdownImage, m)
		local, ok := replacements[src]
		if !ok {
			return m
		}
		return strings.Replace(m, "("+src, "("+local, 1)
	})

	return updated, nil
}

// download returns the local path for u. ok is false when the image is skipped.
// Only local write failures are returned as errors.
func (l *ImageLocalizer) download(ctx context.Context, rawURL string) (string, bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", false, nil
	}

	if ext := extensionFromPath(parsed.Path); ext != "" {
		name := ImageFileName(rawURL, ext)
		if _, err := os.Stat(filepath.Join(l.dir, name)); err == nil {
			return ImagePrefix + name, true, nil
		}
	}

	type payload struct {
		body        []byte
		contentType string
	}

	op := func() (payload, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return payload{}, backoff.Permanent(err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return payload{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return payload{}, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return payload{}, backoff.Permanent(fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return payload{}, err
		}
		return payload{body: body, contentType: resp.Header.Get("Content-Type")}, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = 10 * time.Second

	p, err := backoff.RetryWithData(op, backoff.WithContext(backoff.WithMaxRetries(policy, l.maxRetries), ctx))
	if err != nil {
		l.logger.Warn("Skipping image", "url", rawURL, "error", err)
		return "", false, nil
	}

	ext := extensionFromPath(parsed.Path)
	if ext == "" {
		ext = extensionFromContentType(p.contentType)
	}
	name := ImageFileName(rawURL, ext)
	target := filepath.Join(l.dir, name)
	if _, err := os.Stat(target); os.IsNotExist(err) {
		if err := writeFileAtomic(target, p.body); err != nil {
			return "", false, oops.With("path", target, "url", rawURL, "context", "failed to write image").Wrap(err)
		}
	}

	return ImagePrefix + name, true, nil
}

// ImageFileName is the content-addressed name an image URL is stored under.
func ImageFileName(rawURL, ext string) string {
	if ext == "" {
		ext = "img"
	}
	return hashString(rawURL) + "." + ext
}

func extractImageURLs(markdown string) []string {
	var urls []string
	for _, m := range markdownImage.FindAllStringSubmatch(markdown, -1) {
		urls = append(urls, m[1])
	}
	for _, m := range htmlImage.FindAllStringSubmatch(markdown, -1) {
		urls = append(urls, m[1])
	}
	return lo.Uniq(urls)
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func extensionFromPath(p string) string {
	ext := strings.TrimPrefix(path.Ext(p), ".")
	if ext == "" {
		return ""
	}
	switch strings.ToLower(ext) {
	case "png":
		return "png"
	case "jpg", "jpeg":
		return "jpg"
	case "webp":
		return "webp"
	case "gif":
		return "gif"
	case "svg", "svgz":
		return "svg"
	default:
		return "img"
	}
}

func extensionFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "image/png"):
		return "png"
	case strings.Contains(ct, "image/jpeg"), strings.Contains(ct, "image/jpg"):
		return "jpg"
	case strings.Contains(ct, "image/webp"):
		return "webp"
	case strings.Contains(ct, "image/gif"):
		return "gif"
	case strings.Contains(ct, "image/svg+xml"):
		return "svg"
	default:
		return ""
	}
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func writeFileAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
