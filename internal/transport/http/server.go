package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	articleDomain "github.com/reshetovitsme/rss-reader/internal/modules/article/domain"
	articleService "github.com/reshetovitsme/rss-reader/internal/modules/article/service"
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
	sourceService "github.com/reshetovitsme/rss-reader/internal/modules/source/service"
	"github.com/reshetovitsme/rss-reader/internal/shared/config"
	sharedErrors "github.com/reshetovitsme/rss-reader/internal/shared/errors"
	"github.com/samber/lo"
	sloghttp "github.com/samber/slog-http"
)

//go:embed static/index.html
var indexHTML []byte

// ChannelFetcher fetches a parsed feed for a source.
type ChannelFetcher interface {
	FetchChannel(ctx context.Context, src sourceDomain.FeedSource) (*feedDomain.Channel, error)
}

// Server is the browser front end: a JSON API over the configured feeds, the
// stored article archive and the localized images.
type Server struct {
	cfg      *config.Config
	registry *sourceService.Registry
	fetcher  ChannelFetcher
	store    *articleService.Store
	logger   *slog.Logger

	mu     sync.Mutex
	cache  map[int]*feedDomain.Channel
	stored map[int]bool

	// background saves outlive the request that started them
	bg       context.Context
	cancelBg context.CancelFunc
	saves    sync.WaitGroup

	server *http.Server
}

// New creates a new HTTP server
func New(cfg *config.Config, registry *sourceService.Registry, fetcher ChannelFetcher, store *articleService.Store) *Server {
	bg, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:      cfg,
		registry: registry,
		fetcher:  fetcher,
		store:    store,
		logger:   slog.Default(),
		cache:    make(map[int]*feedDomain.Channel),
		stored:   make(map[int]bool),
		bg:       bg,
		cancelBg: cancel,
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))
}

// URL returns the address a browser should open.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// Handler builds the routed, logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/feeds", s.handleListFeeds)
	mux.HandleFunc("GET /api/feeds/{index}", s.handleGetFeed)
	mux.HandleFunc("GET /api/feeds/{index}/items/{item}", s.handleGetItem)
	mux.HandleFunc("GET /api/articles", s.handleListArticles)
	mux.HandleFunc("GET /articles/{n}", s.handleArticlePage)
	mux.HandleFunc("GET /rss", s.handleRSSFeed)
	mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.Dir(s.store.ImagesPath()))))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Use slog-http middleware with recovery
	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)
	return handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Server starting", "url", s.URL())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then cancels and waits for background saves.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	s.cancelBg()
	s.Wait()
	return err
}

// Wait blocks until every background save has finished.
func (s *Server) Wait() {
	s.saves.Wait()
}

type feedInfo struct {
	Index    int                   `json:"index"`
	Name     string                `json:"name"`
	URL      string                `json:"url"`
	Kind     sourceDomain.FeedKind `json:"kind"`
	IsRSSHub bool                  `json:"is_rsshub"`
}

type itemMeta struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Link    string `json:"link,omitempty"`
	PubDate string `json:"pub_date,omitempty"`
}

type feedResponse struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Items       []itemMeta `json:"items"`
}

type itemContent struct {
	Title       string `json:"title"`
	Link        string `json:"link,omitempty"`
	PubDate     string `json:"pub_date,omitempty"`
	ContentHTML string `json:"content_html"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexHTML)
}

func (s *Server) handleListFeeds(w http.ResponseWriter, r *http.Request) {
	feeds := lo.Map(s.registry.Sources(), func(src sourceDomain.FeedSource, i int) feedInfo {
		return feedInfo{
			Index:    i,
			Name:     src.Name,
			URL:      src.URLOrRoute,
			Kind:     src.Kind,
			IsRSSHub: src.Kind == sourceDomain.FeedKindRsshub,
		}
	})
	s.writeJSON(w, http.StatusOK, feeds)
}

func (s *Server) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	index, src, ok := s.sourceFromPath(w, r)
	if !ok {
		return
	}

	channel, err := s.channel(r.Context(), index, src)
	if err != nil {
		s.logger.Error("Error fetching feed", "source", src.Name, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if s.claimStore(index) {
		s.saveInBackground(src, channel.Items)
	}

	resp := feedResponse{
		Title:       lo.Ternary(channel.Title != "", channel.Title, src.Name),
		Description: channel.Description,
		Items: lo.Map(channel.Items, func(item feedDomain.FeedItem, i int) itemMeta {
			return itemMeta{ID: i, Title: titleOf(item), Link: item.Link, PubDate: pubDate(item)}
		}),
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	index, src, ok := s.sourceFromPath(w, r)
	if !ok {
		return
	}

	channel, err := s.channel(r.Context(), index, src)
	if err != nil {
		s.logger.Error("Error fetching feed", "source", src.Name, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	n, err := strconv.Atoi(r.PathValue("item"))
	if err != nil || n < 0 || n >= len(channel.Items) {
		http.Error(w, sharedErrors.ErrItemNotFound.Error(), http.StatusNotFound)
		return
	}
	item := channel.Items[n]

	resp := itemContent{
		Title:   titleOf(item),
		Link:    item.Link,
		PubDate: pubDate(item),
	}

	markdown, found, err := s.store.Lookup(titleOf(item), src.Name)
	switch {
	case err != nil:
		s.logger.Error("Error reading stored article", "source", src.Name, "title", item.Title, "error", err)
		http.Error(w, "Failed to read article", http.StatusInternalServerError)
		return
	case !found:
		resp.ContentHTML = "<em>Content is still processing.</em>"
	case strings.TrimSpace(markdown) == "":
		resp.ContentHTML = "<em>No content.</em>"
	default:
		html, err := articleService.RenderHTML(markdown)
		if err != nil {
			s.logger.Error("Error rendering article", "error", err)
			http.Error(w, "Failed to render article", http.StatusInternalServerError)
			return
		}
		resp.ContentHTML = html
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	var (
		records []articleDomain.ArticleRecord
		err     error
	)
	if name := r.URL.Query().Get("name"); name != "" {
		records, err = s.store.Find(name)
	} else {
		records, err = s.store.Records()
	}
	if err != nil {
		s.logger.Error("Error reading article index", "error", err)
		http.Error(w, "Failed to read article index", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleArticlePage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		http.Error(w, sharedErrors.ErrArticleNotFound.Error(), http.StatusNotFound)
		return
	}

	record, found, err := s.store.RecordAt(n)
	if err != nil {
		s.logger.Error("Error reading article index", "error", err)
		http.Error(w, "Failed to read article index", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, sharedErrors.ErrArticleNotFound.Error(), http.StatusNotFound)
		return
	}

	markdown, err := s.store.Read(record)
	if err != nil {
		s.logger.Error("Error reading stored article", "path", record.StoragePath, "error", err)
		http.Error(w, sharedErrors.ErrArticleNotFound.Error(), http.StatusNotFound)
		return
	}
	body, err := articleService.RenderHTML(markdown)
	if err != nil {
		http.Error(w, "Failed to render article", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, articlePage, escapeHTML(record.ArticleName), escapeHTML(record.ArticleName), escapeHTML(record.SourceName), body)
}

func (s *Server) handleRSSFeed(w http.ResponseWriter, r *http.Request) {
	// Get base URL from request
	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed, err := s.store.GenerateArchive(baseURL, articleService.DefaultArchiveSize)
	if err != nil {
		s.logger.Error("Error generating feed", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	// Generate RSS XML
	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300") // Cache for 5 minutes
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// channel returns the cached channel for index, fetching it on first use.
// Failed fetches are not cached.
func (s *Server) channel(ctx context.Context, index int, src sourceDomain.FeedSource) (*feedDomain.Channel, error) {
	s.mu.Lock()
	cached, ok := s.cache[index]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	channel, err := s.fetcher.FetchChannel(ctx, src)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[index] = channel
	s.mu.Unlock()
	return channel, nil
}

// claimStore reports whether the cached channel for index still has to be
// stored. It returns true once per fetched channel.
func (s *Server) claimStore(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stored[index] {
		return false
	}
	s.stored[index] = true
	return true
}

func (s *Server) saveInBackground(src sourceDomain.FeedSource, items []feedDomain.FeedItem) {
	items = append([]feedDomain.FeedItem(nil), items...)
	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		records, err := s.store.SaveAll(s.bg, src.Name, src.FetchURL, items)
		if err != nil {
			s.logger.Error("Failed to store feed articles", "source", src.Name, "stored", len(records), "error", err)
			return
		}
		s.logger.Debug("Stored feed articles", "source", src.Name, "stored", len(records))
	}()
}

func (s *Server) sourceFromPath(w http.ResponseWriter, r *http.Request) (int, sourceDomain.FeedSource, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, sharedErrors.ErrFeedNotFound.Error(), http.StatusNotFound)
		return 0, sourceDomain.FeedSource{}, false
	}
	src, ok := s.registry.Get(index)
	if !ok {
		http.Error(w, sharedErrors.ErrFeedNotFound.Error(), http.StatusNotFound)
		return 0, sourceDomain.FeedSource{}, false
	}
	return index, src, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Error encoding response", "error", err)
	}
}

func titleOf(item feedDomain.FeedItem) string {
	if strings.TrimSpace(item.Title) == "" {
		return "No Title"
	}
	return strings.TrimSpace(item.Title)
}

func pubDate(item feedDomain.FeedItem) string {
	if item.PublishedAt == nil {
		return ""
	}
	return item.PublishedAt.Format(time.RFC3339)
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

func escapeHTML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;").Replace(s)
}

const articlePage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>%s</title>
    <style>
        body { font-family: Georgia, serif; max-width: 760px; margin: 40px auto; padding: 0 20px; line-height: 1.6; }
        .meta { color: #7a6756; }
        img { max-width: 100%%; }
    </style>
</head>
<body>
    <h1>%s</h1>
    <p class="meta">%s · <a href="/rss">archive</a></p>
    %s
</body>
</html>`
