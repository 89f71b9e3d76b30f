package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"coursevault-backend/logging"
	"coursevault-backend/models"
)

// InvalidURLTitle is reported for inputs no media identifier can be extracted from.
const InvalidURLTitle = "Invalid URL"

// TitleService answers title lookups from the cache, resolving misses remotely
// and persisting the cache after every batch that changed it.
type TitleService struct {
	cache    *TitleCache
	resolver Resolver
	logger   *slog.Logger
	flight   singleflight.Group
}

// NewTitleService creates a title service over an already loaded cache.
func NewTitleService(cache *TitleCache, resolver Resolver, logger *slog.Logger) *TitleService {
	return &TitleService{
		cache:    cache,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "title_service"),
	}
}

// Cache returns the underlying title cache.
func (s *TitleService) Cache() *TitleCache {
	return s.cache
}

// GetTitle returns the title for mediaID and whether it was already cached.
// A miss is resolved and persisted before returning; the returned error only
// reports a persistence failure, the title is valid either way.
func (s *TitleService) GetTitle(ctx context.Context, mediaID string) (string, bool, error) {
	if title, ok := s.cache.Get(mediaID); ok {
		return title, true, nil
	}

	title, fetched := s.resolveMiss(ctx, mediaID)
	if !fetched {
		return title, true, nil
	}
	if err := s.persist(); err != nil {
		return title, false, err
	}
	return title, false, nil
}

// FetchTitles resolves every URL in order. URLs without a media identifier are
// reported with a nil MediaID and never abort the batch. It returns the
// results and how many titles were resolved remotely.
func (s *TitleService) FetchTitles(ctx context.Context, urls []string) ([]models.TitleResult, int, error) {
	results := make([]models.TitleResult, 0, len(urls))
	fetchedCount := 0

	for _, url := range urls {
		mediaID, ok := ExtractMediaID(url)
		if !ok {
			results = append(results, models.TitleResult{URL: url, Title: InvalidURLTitle})
			continue
		}

		if title, ok := s.cache.Get(mediaID); ok {
			results = append(results, models.TitleResult{
				URL:     url,
				MediaID: models.StringPtr(mediaID),
				Title:   title,
				Cached:  true,
			})
			continue
		}

		title, fetched := s.resolveMiss(ctx, mediaID)
		if fetched {
			fetchedCount++
		}
		results = append(results, models.TitleResult{
			URL:     url,
			MediaID: models.StringPtr(mediaID),
			Title:   title,
			Cached:  !fetched,
		})
	}

	if fetchedCount > 0 {
		if err := s.persist(); err != nil {
			return results, fetchedCount, err
		}
	}
	return results, fetchedCount, nil
}

// BulkFetch splits linksText into lines and fetches titles for every non-blank line.
func (s *TitleService) BulkFetch(ctx context.Context, linksText string) (models.BulkFetchResponse, error) {
	var urls []string
	for _, line := range strings.Split(linksText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			urls = append(urls, line)
		}
	}

	results, fetched, err := s.FetchTitles(ctx, urls)

	cached := 0
	for _, r := range results {
		if r.Cached {
			cached++
		}
	}
	return models.BulkFetchResponse{
		Titles: results,
		Total:  len(results),
		New:    fetched,
		Cached: cached,
	}, err
}

// RefreshAll re-resolves every cached identifier sequentially and persists the
// result. It returns the cache size before and after the refresh.
func (s *TitleService) RefreshAll(ctx context.Context) (int, int, error) {
	ids := s.cache.IDs()
	oldCount := len(ids)

	s.logger.Info("refreshing cached titles", slog.Int("count", oldCount))
	var interrupted error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			interrupted = fmt.Errorf("refresh interrupted: %w", err)
			break
		}
		// A lookup in flight finishes even if the caller goes away, so a
		// cancelled request never replaces a real title with a placeholder.
		s.cache.Put(id, s.resolver.Resolve(context.WithoutCancel(ctx), id))
	}

	// Titles updated before an interruption are still flushed.
	if err := s.persist(); err != nil {
		return oldCount, s.cache.Len(), err
	}
	return oldCount, s.cache.Len(), interrupted
}

// resolveMiss resolves mediaID once across concurrent callers and stores the
// result. fetched is false when another caller populated the cache first.
func (s *TitleService) resolveMiss(ctx context.Context, mediaID string) (string, bool) {
	type outcome struct {
		title   string
		fetched bool
	}

	v, _, _ := s.flight.Do(mediaID, func() (any, error) {
		if title, ok := s.cache.Get(mediaID); ok {
			return outcome{title: title}, nil
		}
		// Shared by every waiter, so one caller going away must not cancel it.
		title := s.resolver.Resolve(context.WithoutCancel(ctx), mediaID)
		s.cache.Put(mediaID, title)
		s.logger.Debug("resolved title",
			slog.String(logging.FieldMediaID, mediaID),
			slog.String("title", title))
		return outcome{title: title, fetched: true}, nil
	})

	out := v.(outcome)
	return out.title, out.fetched
}

func (s *TitleService) persist() error {
	if err := s.cache.SaveAll(); err != nil {
		s.logger.Error("failed to persist title cache", logging.Error(err))
		return fmt.Errorf("persist title cache: %w", err)
	}
	return nil
}
