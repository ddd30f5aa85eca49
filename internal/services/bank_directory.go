package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"topup/internal/config"
	mem "topup/pkg/memcache"
	"topup/pkg/utils"
)

// BankDestination is where the depositor sends the transfer.
type BankDestination struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountHolder string `json:"accountHolder"`
}

func (d BankDestination) complete() bool {
	return strings.TrimSpace(d.BankName) != "" &&
		strings.TrimSpace(d.AccountNumber) != "" &&
		strings.TrimSpace(d.AccountHolder) != ""
}

type BankDirectory interface {
	Destination(ctx context.Context) (BankDestination, error)
}

// NewBankDirectory asks the payment provider when one is configured and
// falls back to the fixed destination otherwise.
func NewBankDirectory(cfg *config.Config) BankDirectory {
	if cfg.Provider.BaseURL == "" {
		return NewStaticBankDirectory(cfg.Bank)
	}
	provider := NewProviderBankDirectory(cfg.Provider, nil)
	if cfg.Provider.CacheTTL <= 0 {
		return provider
	}
	return NewCachedBankDirectory(provider, cfg.Provider.CacheTTL)
}

type StaticBankDirectory struct {
	dest BankDestination
}

func NewStaticBankDirectory(bank config.BankConfig) *StaticBankDirectory {
	return &StaticBankDirectory{dest: BankDestination{
		BankName:      bank.Name,
		AccountNumber: bank.AccountNumber,
		AccountHolder: bank.AccountHolder,
	}}
}

func (s *StaticBankDirectory) Destination(ctx context.Context) (BankDestination, error) {
	if !s.dest.complete() {
		return BankDestination{}, fmt.Errorf("%w: bank destination is not configured", utils.ErrUpstream)
	}
	return s.dest, nil
}

type ProviderBankDirectory struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewProviderBankDirectory uses client when given; otherwise a client bounded by cfg.Timeout.
func NewProviderBankDirectory(cfg config.ProviderConfig, client *http.Client) *ProviderBankDirectory {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &ProviderBankDirectory{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

func (p *ProviderBankDirectory) Destination(ctx context.Context) (BankDestination, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/bank-destination", nil)
	if err != nil {
		return BankDestination{}, fmt.Errorf("%w: build request: %v", utils.ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return BankDestination{}, fmt.Errorf("%w: %v", utils.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return BankDestination{}, fmt.Errorf("%w: read response: %v", utils.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return BankDestination{}, fmt.Errorf("%w: provider returned %d", utils.ErrUpstream, resp.StatusCode)
	}

	var dest BankDestination
	if err := json.Unmarshal(body, &dest); err != nil {
		return BankDestination{}, fmt.Errorf("%w: decode response: %v", utils.ErrUpstream, err)
	}
	if !dest.complete() {
		return BankDestination{}, fmt.Errorf("%w: incomplete bank destination", utils.ErrUpstream)
	}
	return dest, nil
}

const destinationCacheKey = "destination"

// CachedBankDirectory reuses a successful lookup for ttl. Failures are not cached.
type CachedBankDirectory struct {
	next  BankDirectory
	ttl   time.Duration
	cache *mem.TTLCache[BankDestination]
}

func NewCachedBankDirectory(next BankDirectory, ttl time.Duration) *CachedBankDirectory {
	return &CachedBankDirectory{
		next:  next,
		ttl:   ttl,
		cache: mem.NewTTLCache[BankDestination](),
	}
}

func (c *CachedBankDirectory) Destination(ctx context.Context) (BankDestination, error) {
	if dest, ok := c.cache.Get(destinationCacheKey); ok {
		return dest, nil
	}
	dest, err := c.next.Destination(ctx)
	if err != nil {
		return BankDestination{}, err
	}
	c.cache.Set(destinationCacheKey, dest, c.ttl)
	return dest, nil
}
