package p21

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contractsync/backend/config"
)

const priceCacheKeyPrefix = "p21:price:"

type cachedPrice struct {
	ItemNumber string `json:"itemNumber"`
	UnitPrice  string `json:"unitPrice"`
	UOM        string `json:"uom"`
	NotFound   bool   `json:"notFound,omitempty"`
}

// decodeCachedPrice turns a cache entry back into a lookup result. Negative
// entries (item absent from the feed) decode to ErrItemNotFound so repeated
// runs over a catalogue with missing items skip the feed too.
func decodeCachedPrice(c cachedPrice) (*ItemPrice, error) {
	if c.NotFound {
		return nil, ErrItemNotFound
	}
	price, err := decimal.NewFromString(c.UnitPrice)
	if err != nil {
		return nil, err
	}
	return &ItemPrice{ItemNumber: c.ItemNumber, UnitPrice: price, UOM: c.UOM}, nil
}

// CachedPriceSource wraps a Client with a short-TTL Redis cache so repeated
// reconciliation runs over the same catalogue do not hammer the OData feed.
// Both hits and definitive misses are cached; transient lookup failures are
// not. With no Redis connected every lookup goes straight through.
type CachedPriceSource struct {
	Client *Client
	TTL    time.Duration
}

func NewCachedPriceSource(client *Client) *CachedPriceSource {
	ttl := time.Duration(config.IntFromEnv("P21_PRICE_CACHE_TTL_SECONDS", 300)) * time.Second
	return &CachedPriceSource{Client: client, TTL: ttl}
}

func (s *CachedPriceSource) ItemPrice(ctx context.Context, itemNumber string) (*ItemPrice, error) {
	key := priceCacheKeyPrefix + itemNumber

	var cached cachedPrice
	if hit, err := config.GetRedisObject(key, &cached); err == nil && hit {
		price, cerr := decodeCachedPrice(cached)
		if cerr == nil {
			return price, nil
		}
		if errors.Is(cerr, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		// Undecodable entry: fall through to a live lookup.
	}

	price, err := s.Client.ItemPrice(ctx, itemNumber)
	if errors.Is(err, ErrItemNotFound) {
		_ = config.SetRedisObject(key, cachedPrice{ItemNumber: itemNumber, NotFound: true}, s.TTL)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	_ = config.SetRedisObject(key, cachedPrice{
		ItemNumber: price.ItemNumber,
		UnitPrice:  price.UnitPrice.String(),
		UOM:        price.UOM,
	}, s.TTL)

	return price, nil
}

// DefaultPriceSource builds the price source used by the run dispatcher from
// the environment. Missing OData config is not an error here; lookups fail
// per-run with ErrNotConfigured instead.
func DefaultPriceSource() *CachedPriceSource {
	return NewCachedPriceSource(NewClient(os.Getenv("P21_ODATA_BASE_URL"), os.Getenv("P21_ODATA_API_KEY")))
}
