package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mmcdole/reel/internal/domain"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"

	defaultTimeout = 15 * time.Second
	userAgent      = "Reel/1.0"
)

// Options configures a Client
type Options struct {
	BaseURL     string
	APIKey      string
	AccessToken string // v4 read access token, sent as a bearer token instead of api_key
	Language    string
	Region      string
	Timeout     time.Duration

	// Request pacing. Zero RatePerSecond disables the limiter.
	RatePerSecond float64
	Burst         int

	IncludeAdult bool
}

// Client implements domain.CatalogRepository for the TMDB v3 API
type Client struct {
	opts       Options
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ domain.CatalogRepository = (*Client)(nil)

// NewClient creates a new TMDB API client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: limiter,
		logger:  logger,
	}
}

// listPath returns the endpoint backing a category
func listPath(mt domain.MediaType, cat domain.Category) (string, error) {
	if !ValidMediaType(mt) {
		return "", fmt.Errorf("unknown media type %q", mt)
	}
	switch cat {
	case domain.CategoryTrending:
		return fmt.Sprintf("/trending/%s/week", mt), nil
	case domain.CategoryDiscover:
		return fmt.Sprintf("/discover/%s", mt), nil
	}
	if !domain.ValidCategory(mt, cat) {
		return "", fmt.Errorf("category %q is not available for %s", cat, mt)
	}
	return fmt.Sprintf("/%s/%s", mt, cat), nil
}

// ValidMediaType reports whether the API serves mt
func ValidMediaType(mt domain.MediaType) bool {
	return mt == domain.MediaTypeMovie || mt == domain.MediaTypeTV
}

// GetList returns one page of a category list
func (c *Client) GetList(ctx context.Context, mt domain.MediaType, cat domain.Category, page int) (*domain.Page[domain.Content], error) {
	path, err := listPath(mt, cat)
	if err != nil {
		return nil, err
	}

	query := c.pageQuery(page)
	if cat == domain.CategoryDiscover {
		query.Set("sort_by", "popularity.desc")
	}
	if c.opts.Region != "" && mt == domain.MediaTypeMovie {
		query.Set("region", c.opts.Region)
	}

	var resp listResponse
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	return toPage(resp, mt, cat), nil
}

// Discover returns one page of the discover list restricted to a genre
func (c *Client) Discover(ctx context.Context, mt domain.MediaType, genreID, page int) (*domain.Page[domain.Content], error) {
	path, err := listPath(mt, domain.CategoryDiscover)
	if err != nil {
		return nil, err
	}
	query := c.pageQuery(page)
	query.Set("sort_by", "popularity.desc")
	if genreID > 0 {
		query.Set("with_genres", strconv.Itoa(genreID))
	}

	var resp listResponse
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	return toPage(resp, mt, domain.CategoryDiscover), nil
}

// Search returns one page of search results; results are tagged CategorySearch
func (c *Client) Search(ctx context.Context, mt domain.MediaType, q string, page int) (*domain.Page[domain.Content], error) {
	if !ValidMediaType(mt) {
		return nil, fmt.Errorf("unknown media type %q", mt)
	}
	query := c.pageQuery(page)
	query.Set("query", q)

	var resp listResponse
	if err := c.get(ctx, "/search/"+string(mt), query, &resp); err != nil {
		return nil, err
	}
	return toPage(resp, mt, domain.CategorySearch), nil
}

// GetDetails returns the full record of a movie or show
func (c *Client) GetDetails(ctx context.Context, mt domain.MediaType, id int) (*domain.Details, error) {
	if !ValidMediaType(mt) {
		return nil, fmt.Errorf("unknown media type %q", mt)
	}
	query := c.baseQuery()

	var resp detailsDTO
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", mt, id), query, &resp); err != nil {
		return nil, err
	}
	return MapDetails(resp, mt, time.Now()), nil
}

// GetGenres returns the genre list of a media type
func (c *Client) GetGenres(ctx context.Context, mt domain.MediaType) ([]domain.Genre, error) {
	if !ValidMediaType(mt) {
		return nil, fmt.Errorf("unknown media type %q", mt)
	}

	var resp genreListResponse
	if err := c.get(ctx, fmt.Sprintf("/genre/%s/list", mt), c.baseQuery(), &resp); err != nil {
		return nil, err
	}
	return MapGenres(resp.Genres), nil
}

func toPage(resp listResponse, mt domain.MediaType, cat domain.Category) *domain.Page[domain.Content] {
	return &domain.Page[domain.Content]{
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
		Results:      MapResults(resp.Results, mt, cat),
	}
}

func (c *Client) baseQuery() url.Values {
	query := url.Values{}
	if c.opts.Language != "" {
		query.Set("language", c.opts.Language)
	}
	return query
}

func (c *Client) pageQuery(page int) url.Values {
	query := c.baseQuery()
	if page < 1 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("include_adult", strconv.FormatBool(c.opts.IncludeAdult))
	return query
}

// get performs a paced GET and decodes the JSON body into dest
func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "error", err, "path", path, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// doRequest performs an authenticated HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if query == nil {
		query = url.Values{}
	}
	// Log the URL before the key is added
	logURL := c.opts.BaseURL + path
	if len(query) > 0 {
		logURL += "?" + query.Encode()
	}
	if c.opts.AccessToken == "" && c.opts.APIKey != "" {
		query.Set("api_key", c.opts.APIKey)
	}
	reqURL := c.opts.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.opts.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.AccessToken)
	}

	c.logger.Debug("tmdb request", "method", method, "url", logURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("tmdb request failed", "error", err, "path", path)
		return nil, fmt.Errorf("%w: %w", domain.ErrOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", domain.ErrOffline, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	}

	c.logger.Error("tmdb request error", "status", resp.StatusCode, "body", string(body))
	return nil, &domain.HTTPError{Status: resp.StatusCode, Body: statusMessage(body)}
}

// statusMessage extracts TMDB's status_message, falling back to the raw body
func statusMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.StatusMessage != "" {
		return e.StatusMessage
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

