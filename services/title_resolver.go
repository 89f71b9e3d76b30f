package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coursevault-backend/logging"
)

// Resolver turns a media identifier into a human-readable title.
type Resolver interface {
	Resolve(ctx context.Context, mediaID string) string
}

// StatusError reports a non-2xx response from the title service.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// errEmptyTitle means the endpoint answered but carried no usable title.
var errEmptyTitle = errors.New("response has no title")

const maxTitleResponseBytes = 1 << 20

// PlaceholderTitle is the title used when remote resolution fails.
func PlaceholderTitle(mediaID string) string {
	return "Video " + mediaID
}

// TitleResolver looks titles up on Wistia: the embed JSON endpoint first,
// then the oEmbed endpoint scoped to an account.
type TitleResolver struct {
	baseURL    string
	account    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Resolver = (*TitleResolver)(nil)

// ResolverOption configures a TitleResolver.
type ResolverOption func(*TitleResolver)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ResolverOption {
	return func(r *TitleResolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) ResolverOption {
	return func(r *TitleResolver) {
		if timeout > 0 {
			r.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithUserAgent overrides the User-Agent sent with lookups.
func WithUserAgent(ua string) ResolverOption {
	return func(r *TitleResolver) {
		if ua = strings.TrimSpace(ua); ua != "" {
			r.userAgent = ua
		}
	}
}

// WithLogger sets the logger used to report failed lookups.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *TitleResolver) {
		r.logger = logging.NewComponentLogger(logger, "title_resolver")
	}
}

// NewTitleResolver creates a resolver against baseURL (e.g. https://fast.wistia.com).
func NewTitleResolver(baseURL, account string, opts ...ResolverOption) *TitleResolver {
	r := &TitleResolver{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		account:    strings.TrimSpace(account),
		userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.NewComponentLogger(nil, "title_resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve never fails: when both endpoints are unusable it returns the placeholder title.
func (r *TitleResolver) Resolve(ctx context.Context, mediaID string) string {
	title, err := r.fetchMediaName(ctx, mediaID)
	if err == nil {
		return title
	}
	r.logger.Debug("embed lookup failed, trying oembed",
		slog.String(logging.FieldMediaID, mediaID),
		logging.Error(err))

	title, oembedErr := r.fetchOEmbedTitle(ctx, mediaID)
	if oembedErr == nil {
		return title
	}

	r.logger.Warn("title lookup failed, using placeholder",
		slog.String(logging.FieldMediaID, mediaID),
		slog.String("embed_error", err.Error()),
		slog.String("oembed_error", oembedErr.Error()))
	return PlaceholderTitle(mediaID)
}

func (r *TitleResolver) fetchMediaName(ctx context.Context, mediaID string) (string, error) {
	endpoint := fmt.Sprintf("%s/embed/medias/%s.json", r.baseURL, url.PathEscape(mediaID))

	var payload struct {
		Media struct {
			Name string `json:"name"`
		} `json:"media"`
	}
	if err := r.getJSON(ctx, endpoint, &payload); err != nil {
		return "", err
	}
	if name := strings.TrimSpace(payload.Media.Name); name != "" {
		return name, nil
	}
	return "", errEmptyTitle
}

func (r *TitleResolver) fetchOEmbedTitle(ctx context.Context, mediaID string) (string, error) {
	mediaURL := fmt.Sprintf("https://%s.wistia.com/medias/%s", r.account, mediaID)
	endpoint := r.baseURL + "/oembed?url=" + url.QueryEscape(mediaURL)

	var payload struct {
		Title string `json:"title"`
	}
	if err := r.getJSON(ctx, endpoint, &payload); err != nil {
		return "", err
	}
	if title := strings.TrimSpace(payload.Title); title != "" {
		return title, nil
	}
	return "", errEmptyTitle
}

func (r *TitleResolver) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxTitleResponseBytes))
		return &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTitleResponseBytes)).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}
