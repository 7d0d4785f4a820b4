// Package affiliation integrates the external character-affiliation provider
// and adapts it to the domain's AffiliationSource contract.
package affiliation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2/clientcredentials"

	"aegis/internal/shared/config"
	"aegis/internal/shared/logger"
)

const (
	orgCachePrefix      = "affiliation:org:"
	allianceCachePrefix = "affiliation:alliance:"
	maxResponseSize     = 1 << 20 // 1MB
)

// CharacterAffiliation is one row of the provider's bulk affiliation answer.
type CharacterAffiliation struct {
	CharacterID    int64 `json:"character_id"`
	OrganizationID int64 `json:"organization_id"`
	AllianceID     int64 `json:"alliance_id,omitempty"`
}

// CharacterInfo is the provider's character detail record.
type CharacterInfo struct {
	CharacterID    int64  `json:"character_id"`
	Name           string `json:"name"`
	OrganizationID int64  `json:"organization_id"`
	AllianceID     int64  `json:"alliance_id,omitempty"`
}

// OrganizationInfo is the provider's organization detail record.
type OrganizationInfo struct {
	OrganizationID int64  `json:"organization_id"`
	Name           string `json:"name"`
	Ticker         string `json:"ticker"`
	AllianceID     int64  `json:"alliance_id,omitempty"`
}

// AllianceInfo is the provider's alliance detail record.
type AllianceInfo struct {
	AllianceID int64  `json:"alliance_id"`
	Name       string `json:"name"`
	Ticker     string `json:"ticker"`
}

// Client talks to the affiliation provider over OAuth2 client credentials.
// Organization and alliance details are cached in Redis since they change
// rarely and the provider rate-limits aggressively.
type Client struct {
	baseURL    string
	httpClient *http.Client
	redis      *redis.Client
	cacheTTL   time.Duration
	logger     logger.Interface
}

func NewClient(cfg *config.AffiliationConfig, redisClient *redis.Client, log logger.Interface) *Client {
	ccfg := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	httpClient := ccfg.Client(context.Background())
	httpClient.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		redis:      redisClient,
		cacheTTL:   time.Duration(cfg.CacheTTLHours) * time.Hour,
		logger:     log.Named("affiliation"),
	}
}

// CharacterAffiliations resolves the current organization and alliance of a
// batch of characters.
func (c *Client) CharacterAffiliations(ctx context.Context, characterIDs []int64) ([]CharacterAffiliation, error) {
	if len(characterIDs) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(characterIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal character IDs: %w", err)
	}

	var affiliations []CharacterAffiliation
	if err := c.post(ctx, "/v1/characters/affiliation", body, &affiliations); err != nil {
		return nil, err
	}
	return affiliations, nil
}

// Character fetches character details. Not cached: the display name is
// needed fresh when a character record is first created.
func (c *Client) Character(ctx context.Context, characterID int64) (*CharacterInfo, error) {
	var info CharacterInfo
	if err := c.get(ctx, fmt.Sprintf("/v1/characters/%d", characterID), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Organization fetches organization details, preferring the Redis cache.
func (c *Client) Organization(ctx context.Context, organizationID int64) (*OrganizationInfo, error) {
	key := fmt.Sprintf("%s%d", orgCachePrefix, organizationID)

	var info OrganizationInfo
	if ok := c.cacheGet(ctx, key, &info); ok {
		return &info, nil
	}

	if err := c.get(ctx, fmt.Sprintf("/v1/organizations/%d", organizationID), &info); err != nil {
		return nil, err
	}

	c.cacheSet(ctx, key, &info)
	return &info, nil
}

// Alliance fetches alliance details, preferring the Redis cache.
func (c *Client) Alliance(ctx context.Context, allianceID int64) (*AllianceInfo, error) {
	key := fmt.Sprintf("%s%d", allianceCachePrefix, allianceID)

	var info AllianceInfo
	if ok := c.cacheGet(ctx, key, &info); ok {
		return &info, nil
	}

	if err := c.get(ctx, fmt.Sprintf("/v1/alliances/%d", allianceID), &info); err != nil {
		return nil, err
	}

	c.cacheSet(ctx, key, &info)
	return &info, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("affiliation provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("affiliation provider returned status %d for %s", resp.StatusCode, req.URL.Path)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}

func (c *Client) cacheGet(ctx context.Context, key string, out any) bool {
	if c.redis == nil {
		return false
	}
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warnw("failed to decode cached affiliation record", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Client) cacheSet(ctx context.Context, key string, value any) {
	if c.redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.cacheTTL).Err(); err != nil {
		c.logger.Warnw("failed to cache affiliation record", "key", key, "error", err)
	}
}
