package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/amaumene/packarr/internal/errors"
	"github.com/amaumene/packarr/internal/models"
	"github.com/amaumene/packarr/pkg/logger"
)

// fakeProvider answers with rate limits for its first rateLimited
// calls, then with failErr if set, then with the listing.
type fakeProvider struct {
	name        string
	rateLimited int
	failErr     error
	listing     *models.FileListing
	calls       int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) ListFiles(ctx context.Context, infoHash string) (*models.FileListing, error) {
	p.calls++
	if p.calls <= p.rateLimited {
		return nil, apperrors.NewRateLimitError(p.name, nil)
	}
	if p.failErr != nil {
		return nil, p.failErr
	}
	return p.listing, nil
}

func newTestChain(providers ...DebridClient) *ProviderChain {
	chain := NewProviderChain(providers, logger.New())
	chain.retryBaseDelay = time.Millisecond
	return chain
}

func TestChainRetriesRateLimitThenSucceeds(t *testing.T) {
	provider := &fakeProvider{
		name:        "alldebrid",
		rateLimited: 2,
		listing:     &models.FileListing{DisplayName: "Pack", Source: "alldebrid"},
	}
	chain := newTestChain(provider)

	listing, err := chain.FetchListing(context.Background(), testHash)
	require.NoError(t, err)
	assert.Equal(t, "Pack", listing.DisplayName)
	assert.Equal(t, 3, provider.calls, "two 429s then success means exactly two retries")
}

func TestChainExhaustsRetryBudget(t *testing.T) {
	provider := &fakeProvider{name: "alldebrid", rateLimited: 100}
	chain := newTestChain(provider)

	_, err := chain.FetchListing(context.Background(), testHash)
	require.Error(t, err)
	assert.True(t, apperrors.IsRateLimit(err))
	assert.Equal(t, 4, provider.calls, "initial attempt plus three retries")
}

func TestChainFallsThroughOnProviderError(t *testing.T) {
	primary := &fakeProvider{
		name:    "alldebrid",
		failErr: apperrors.NewProviderError("alldebrid", "boom", nil),
	}
	secondary := &fakeProvider{
		name:    "torbox",
		listing: &models.FileListing{DisplayName: "Pack", Source: "torbox"},
	}
	chain := newTestChain(primary, secondary)

	listing, err := chain.FetchListing(context.Background(), testHash)
	require.NoError(t, err)
	assert.Equal(t, "torbox", listing.Source)
	assert.Equal(t, 1, primary.calls, "plain provider errors are not retried")
	assert.Equal(t, 1, secondary.calls)
}

func TestChainPrefersRateLimitErrorOnTotalFailure(t *testing.T) {
	// When everything fails, the caller must learn about the rate limit
	// so it defers the pack instead of discarding it.
	primary := &fakeProvider{name: "alldebrid", rateLimited: 100}
	secondary := &fakeProvider{
		name:    "torbox",
		failErr: apperrors.NewProviderError("torbox", "boom", nil),
	}
	chain := newTestChain(primary, secondary)

	_, err := chain.FetchListing(context.Background(), testHash)
	require.Error(t, err)
	assert.True(t, apperrors.IsRateLimit(err))
	assert.Equal(t, 1, secondary.calls, "chain still tries the next provider")
}

func TestChainNoProviders(t *testing.T) {
	chain := newTestChain()

	_, err := chain.FetchListing(context.Background(), testHash)
	require.Error(t, err)
}
