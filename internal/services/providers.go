// Package services implements the pack resolution pipeline: the
// provider fallback chain and the orchestrator that ties cache store,
// providers, title parsing and movie matching together.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/amaumene/packarr/internal/constants"
	apperrors "github.com/amaumene/packarr/internal/errors"
	"github.com/amaumene/packarr/internal/models"
	"github.com/amaumene/packarr/pkg/alldebrid"
	"github.com/amaumene/packarr/pkg/bencode"
	"github.com/amaumene/packarr/pkg/httputil"
	"github.com/amaumene/packarr/pkg/logger"
	"github.com/amaumene/packarr/pkg/ratelimiter"
	"github.com/amaumene/packarr/pkg/torbox"
)

// DebridClient lists the files of a torrent a provider has cached.
// Implementations return a rate-limit typed error on HTTP 429 so the
// chain can back off instead of discarding the pack.
type DebridClient interface {
	Name() string
	ListFiles(ctx context.Context, infoHash string) (*models.FileListing, error)
}

// ListingFetcher is the part of the provider chain the resolver
// depends on.
type ListingFetcher interface {
	FetchListing(ctx context.Context, infoHash string) (*models.FileListing, error)
}

// AllDebridProvider adapts the AllDebrid client to the DebridClient
// interface, pacing calls through a token bucket.
type AllDebridProvider struct {
	client  *alldebrid.Client
	limiter *ratelimiter.TokenBucket
}

func NewAllDebridProvider(apiKey string) *AllDebridProvider {
	return &AllDebridProvider{
		client:  alldebrid.NewClient(apiKey, constants.AppName),
		limiter: ratelimiter.NewTokenBucket(constants.AllDebridRateBurst, constants.AllDebridRateLimit),
	}
}

func (p *AllDebridProvider) Name() string { return "alldebrid" }

func (p *AllDebridProvider) ListFiles(ctx context.Context, infoHash string) (*models.FileListing, error) {
	p.limiter.Wait()

	listing, err := p.client.ListFiles(ctx, infoHash)
	if err != nil {
		if errors.Is(err, alldebrid.ErrRateLimited) {
			return nil, apperrors.NewRateLimitError(p.Name(), err)
		}
		return nil, apperrors.NewProviderError(p.Name(), "failed to list files", err)
	}

	result := &models.FileListing{DisplayName: listing.Name, Source: p.Name()}
	for _, f := range listing.Files {
		result.Files = append(result.Files, models.ProviderFile{
			Index:     f.Index,
			Path:      f.Path,
			SizeBytes: f.Size,
		})
	}
	return result, nil
}

// TorBoxProvider adapts the TorBox client to the DebridClient interface.
type TorBoxProvider struct {
	client  *torbox.Client
	limiter *ratelimiter.TokenBucket
}

func NewTorBoxProvider(apiKey string) *TorBoxProvider {
	return &TorBoxProvider{
		client:  torbox.NewClient(apiKey),
		limiter: ratelimiter.NewTokenBucket(constants.TorBoxRateBurst, constants.TorBoxRateLimit),
	}
}

func (p *TorBoxProvider) Name() string { return "torbox" }

func (p *TorBoxProvider) ListFiles(ctx context.Context, infoHash string) (*models.FileListing, error) {
	p.limiter.Wait()

	listing, err := p.client.ListFiles(ctx, infoHash)
	if err != nil {
		if errors.Is(err, torbox.ErrRateLimited) {
			return nil, apperrors.NewRateLimitError(p.Name(), err)
		}
		return nil, apperrors.NewProviderError(p.Name(), "failed to list files", err)
	}

	result := &models.FileListing{DisplayName: listing.Name, Source: p.Name()}
	for _, f := range listing.Files {
		result.Files = append(result.Files, models.ProviderFile{
			Index:     f.Index,
			Path:      f.Path,
			SizeBytes: f.Size,
		})
	}
	return result, nil
}

// MirrorProvider downloads raw .torrent metadata from public read-only
// mirrors and decodes it locally. All mirrors are raced in parallel;
// the first successful decode wins and the rest are cancelled.
type MirrorProvider struct {
	urls       []string
	httpClient *http.Client
	logger     logger.Logger
}

func NewMirrorProvider(urls []string, log logger.Logger) *MirrorProvider {
	return &MirrorProvider{
		urls:       urls,
		httpClient: httputil.NewHTTPClient(constants.MirrorTimeout),
		logger:     log,
	}
}

func (p *MirrorProvider) Name() string { return "mirror" }

func (p *MirrorProvider) ListFiles(ctx context.Context, infoHash string) (*models.FileListing, error) {
	if len(p.urls) == 0 {
		return nil, apperrors.NewProviderError(p.Name(), "no mirrors configured", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.MirrorTimeout)
	defer cancel()

	type mirrorResult struct {
		torrent *bencode.Torrent
		err     error
	}
	results := make(chan mirrorResult, len(p.urls))

	for _, mirror := range p.urls {
		go func(urlPattern string) {
			torrent, err := p.fetchTorrent(ctx, urlPattern, infoHash)
			results <- mirrorResult{torrent: torrent, err: err}
		}(mirror)
	}

	var lastErr error
	for range p.urls {
		res := <-results
		if res.err != nil {
			lastErr = res.err
			continue
		}
		cancel()
		return mirrorListing(res.torrent, p.Name()), nil
	}

	return nil, apperrors.NewProviderError(p.Name(), "all mirrors failed", lastErr)
}

func (p *MirrorProvider) fetchTorrent(ctx context.Context, urlPattern, infoHash string) (*bencode.Torrent, error) {
	url := fmt.Sprintf(urlPattern, strings.ToUpper(infoHash))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	torrent, err := bencode.ParseTorrent(data)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(torrent.InfoHash, infoHash) {
		return nil, fmt.Errorf("mirror served wrong torrent: got %s", torrent.InfoHash)
	}
	return torrent, nil
}

func mirrorListing(torrent *bencode.Torrent, source string) *models.FileListing {
	listing := &models.FileListing{DisplayName: torrent.Name, Source: source}
	for _, f := range torrent.Files {
		listing.Files = append(listing.Files, models.ProviderFile{
			Index:     f.Index,
			Path:      f.Path,
			SizeBytes: f.Size,
		})
	}
	return listing
}

// ProviderChain queries providers in priority order: primary debrid,
// secondary debrid, then the public mirror tier. A rate-limited
// provider is retried with exponential backoff before the chain falls
// through; when the whole chain fails and at least one provider was
// rate limited, the rate-limit error wins so the caller defers the
// pack instead of discarding it.
type ProviderChain struct {
	providers      []DebridClient
	logger         logger.Logger
	retryBaseDelay time.Duration
	debridTimeout  time.Duration
}

func NewProviderChain(providers []DebridClient, log logger.Logger) *ProviderChain {
	return &ProviderChain{
		providers:      providers,
		logger:         log,
		retryBaseDelay: constants.RateLimitBaseDelay,
		debridTimeout:  constants.DebridTimeout,
	}
}

func (c *ProviderChain) FetchListing(ctx context.Context, infoHash string) (*models.FileListing, error) {
	var lastErr error
	var rateLimitErr error

	for _, provider := range c.providers {
		listing, err := c.fetchWithRetry(ctx, provider, infoHash)
		if err == nil {
			c.logger.Infof("[%s] listed %d files for %s", provider.Name(), len(listing.Files), infoHash)
			return listing, nil
		}

		if apperrors.IsRateLimit(err) {
			rateLimitErr = err
			c.logger.Warnf("[%s] rate limit budget exhausted for %s", provider.Name(), infoHash)
		} else {
			lastErr = err
			c.logger.Warnf("[%s] lookup failed for %s: %v", provider.Name(), infoHash, err)
		}
	}

	if rateLimitErr != nil {
		return nil, rateLimitErr
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, apperrors.NewProviderError("chain", "no providers configured", nil)
}

// fetchWithRetry calls one provider, retrying only on rate limits with
// exponentially growing delay (base, 2x, 4x) up to the retry cap.
func (c *ProviderChain) fetchWithRetry(ctx context.Context, provider DebridClient, infoHash string) (*models.FileListing, error) {
	return retry.DoWithData(
		func() (*models.FileListing, error) {
			callCtx, cancel := context.WithTimeout(ctx, c.debridTimeout)
			defer cancel()
			return provider.ListFiles(callCtx, infoHash)
		},
		retry.Context(ctx),
		retry.Attempts(uint(constants.MaxRateLimitRetries)+1),
		retry.Delay(c.retryBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(apperrors.IsRateLimit),
		retry.LastErrorOnly(true),
	)
}
