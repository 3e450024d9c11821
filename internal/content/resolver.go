// Package content fetches section content for site templates from the
// external content API, falling back to built-in defaults.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/huangang/portfolio/internal/config"
	"github.com/huangang/portfolio/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// State records where a section's content came from.
type State string

const (
	StateLoading         State = "loading"
	StateFromAPI         State = "loaded-from-api"
	StateFallbackOnError State = "loaded-from-fallback-on-error"
	StateFallbackOnEmpty State = "loaded-from-fallback-on-empty"
)

// Content is the free-form content of one section.
type Content map[string]interface{}

// Result is a resolved section. Error is set only for StateFallbackOnError.
type Result struct {
	Section string  `json:"section"`
	Content Content `json:"content"`
	State   State   `json:"state"`
	Error   string  `json:"error,omitempty"`
}

// Request names a section together with the content used when the API has none.
type Request struct {
	Section  string
	Fallback Content
}

// Source resolves section content.
type Source interface {
	Resolve(ctx context.Context, templateID int, section string, fallback Content) Result
}

type sectionsResponse struct {
	Sections []struct {
		Content Content `json:"content"`
	} `json:"sections"`
}

// Resolver queries GET {base}/api/sections and never fails: any problem
// yields the fallback content.
type Resolver struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewResolver(cfg *config.ContentConfig) *Resolver {
	return &Resolver{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{},
		timeout: cfg.Timeout,
	}
}

// NewSource returns a Resolver for the configured content API, or Static
// when no base URL is set.
func NewSource(cfg *config.ContentConfig) Source {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		logger.Info().Msg("[Content] No content API configured, serving built-in content")
		return Static{}
	}
	return NewResolver(cfg)
}

// WithClient replaces the HTTP client.
func (r *Resolver) WithClient(c *http.Client) *Resolver {
	r.client = c
	return r
}

func (r *Resolver) Resolve(ctx context.Context, templateID int, section string, fallback Content) Result {
	content, err := r.fetch(ctx, templateID, section)
	if err != nil {
		logger.Warn().
			Err(err).
			Int("template_id", templateID).
			Str("section", section).
			Msg("[Content] Using fallback content")
		return Result{Section: section, Content: fallback, State: StateFallbackOnError, Error: err.Error()}
	}
	if len(content) == 0 {
		logger.Debug().
			Int("template_id", templateID).
			Str("section", section).
			Msg("[Content] No content stored, using fallback")
		return Result{Section: section, Content: fallback, State: StateFallbackOnEmpty}
	}
	return Result{Section: section, Content: content, State: StateFromAPI}
}

func (r *Resolver) fetch(ctx context.Context, templateID int, section string) (Content, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	q := url.Values{}
	q.Set("template_id", strconv.Itoa(templateID))
	q.Set("section_name", section)
	endpoint := r.baseURL + "/api/sections?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("content api returned status %d", resp.StatusCode)
	}

	var body sectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode content response: %w", err)
	}
	if len(body.Sections) == 0 {
		return nil, nil
	}
	return body.Sections[0].Content, nil
}

// ResolveAll resolves every request concurrently. Results keep request order
// and start out loading; each settles exactly once. One section failing does
// not affect the others.
func ResolveAll(ctx context.Context, src Source, templateID int, reqs []Request) []Result {
	results := make([]Result, len(reqs))
	for i, req := range reqs {
		results[i] = Result{Section: req.Section, Content: req.Fallback, State: StateLoading}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = src.Resolve(gctx, templateID, req.Section, req.Fallback)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Static serves fallback content only.
type Static struct{}

func (Static) Resolve(_ context.Context, _ int, section string, fallback Content) Result {
	return Result{Section: section, Content: fallback, State: StateFallbackOnEmpty}
}
