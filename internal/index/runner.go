// Package index orchestrates indexing runs: collect sources, fetch and
// normalize their content, embed it and persist the results.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ragtime-dev/ragtime/internal/embed"
	ragerr "github.com/ragtime-dev/ragtime/internal/errors"
	"github.com/ragtime-dev/ragtime/internal/fetch"
	"github.com/ragtime-dev/ragtime/internal/store"
)

// LinksDirName is the subfolder of the data directory holding *.txt URL
// lists.
const LinksDirName = "links"

// DefaultFetchConcurrency bounds parallel page downloads.
const DefaultFetchConcurrency = 4

// Result summarizes an indexing run.
type Result struct {
	Indexed  int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// Runner executes indexing runs against a data directory.
type Runner struct {
	store       *store.Store
	embedder    embed.Embedder
	fetcher     *fetch.Fetcher
	logger      *slog.Logger
	concurrency int
}

// NewRunner creates an indexing runner. A nil fetcher gets the default;
// concurrency <= 0 uses the default bound.
func NewRunner(s *store.Store, e embed.Embedder, f *fetch.Fetcher, logger *slog.Logger, concurrency int) *Runner {
	if f == nil {
		f = fetch.NewFetcher(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	return &Runner{
		store:       s,
		embedder:    e,
		fetcher:     f,
		logger:      logger,
		concurrency: concurrency,
	}
}

// fetchedSource is a source with its normalized content, ready to embed.
type fetchedSource struct {
	sourceType string
	source     string
	content    string
}

// Run indexes every source under dataDir: URLs listed in
// <dataDir>/links/*.txt and every other file in the directory tree.
// Fetch and read failures skip that source; the run continues and the
// result reports the counts. A second concurrent run against the same
// data directory is rejected via the cross-process index lock.
func (r *Runner) Run(ctx context.Context, dataDir string) (*Result, error) {
	start := time.Now()

	lock := store.NewIndexLock(dataDir)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("another indexing run is already in progress for %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	result := &Result{}

	sources, err := r.collectSources(ctx, dataDir, result)
	if err != nil {
		return nil, err
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.indexOne(ctx, src, result); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	r.logger.Info("indexing_complete",
		slog.Int("indexed", result.Indexed),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// collectSources gathers link-list URLs (fetched concurrently) and local
// files, in a deterministic order: web sources first, then files.
func (r *Runner) collectSources(ctx context.Context, dataDir string, result *Result) ([]fetchedSource, error) {
	urls, err := fetch.ReadLinks(filepath.Join(dataDir, LinksDirName))
	if err != nil {
		return nil, err
	}

	webSources := make([]*fetchedSource, len(urls))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, url := range urls {
		g.Go(func() error {
			text, err := r.fetcher.FetchText(gctx, url)
			if err != nil {
				r.logger.Warn("fetch_failed",
					slog.String("url", url),
					slog.String("error", err.Error()))
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return nil // skip and continue
			}
			webSources[i] = &fetchedSource{
				sourceType: store.SourceTypeWeb,
				source:     url,
				content:    text,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var sources []fetchedSource
	for _, ws := range webSources {
		if ws != nil {
			sources = append(sources, *ws)
		}
	}

	files, err := fetch.ReadLocalFiles(dataDir, LinksDirName)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		text, err := fetch.ReadFileText(f.Path)
		if err != nil {
			r.logger.Warn("file_read_failed",
				slog.String("path", f.Path),
				slog.String("error", err.Error()))
			result.Failed++
			continue
		}
		sources = append(sources, fetchedSource{
			sourceType: store.SourceTypeFile,
			source:     f.Name,
			content:    text,
		})
	}

	return sources, nil
}

// indexOne embeds and persists a single source. Duplicate sources and
// per-item encoding failures are skipped; store failures abort the run.
func (r *Runner) indexOne(ctx context.Context, src fetchedSource, result *Result) error {
	exists, err := r.store.HasSource(ctx, src.source)
	if err != nil {
		return err
	}
	if exists {
		r.logger.Info("source_skipped",
			slog.String("source", src.source),
			slog.String("reason", "already indexed"))
		result.Skipped++
		return nil
	}

	vectors, err := embed.EmbedDocument(ctx, r.embedder, src.content)
	if err != nil {
		if ragerr.GetCode(err) == ragerr.ErrCodeEncodingFailed {
			r.logger.Warn("source_encoding_failed",
				slog.String("source", src.source),
				slog.String("error", err.Error()))
			result.Failed++
			return nil
		}
		return ragerr.New(ragerr.ErrCodeIndexFailed,
			fmt.Sprintf("failed to embed %s", src.source), err)
	}

	inserted, err := r.store.UpsertIfAbsent(ctx, store.Document{
		SourceType: src.sourceType,
		Source:     src.source,
		Content:    src.content,
		Vectors:    vectors,
	})
	if err != nil {
		return err
	}
	if !inserted {
		r.logger.Info("source_skipped",
			slog.String("source", src.source),
			slog.String("reason", "duplicate at commit"))
		result.Skipped++
		return nil
	}

	r.logger.Info("source_indexed",
		slog.String("source", src.source),
		slog.Int("chunks", len(vectors)))
	result.Indexed++
	return nil
}
