package service

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mizuleaf/callscope/internal/infrastructure/gateway"
)

// tokenExpiryMargin treats a token as expired 5 minutes early so a token
// never dies mid-sync.
const tokenExpiryMargin = 5 * time.Minute

// TokenExchanger performs the client-credentials grant.
type TokenExchanger interface {
	ExchangeToken(ctx context.Context, accountID, clientID, clientSecret string) (gateway.Token, error)
}

type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

// CredentialCache caches meeting-platform bearer tokens per (account, client)
// pair. The clock is injected so expiry is testable.
type CredentialCache struct {
	exchanger TokenExchanger
	cache     *gocache.Cache
	now       func() time.Time
}

func NewCredentialCache(exchanger TokenExchanger) *CredentialCache {
	return &CredentialCache{
		exchanger: exchanger,
		cache:     gocache.New(gocache.NoExpiration, 10*time.Minute),
		now:       time.Now,
	}
}

// WithClock replaces the time source. Test use only.
func (c *CredentialCache) WithClock(now func() time.Time) *CredentialCache {
	c.now = now
	return c
}

// GetAccessToken returns a cached token while it has more than the margin
// left, otherwise exchanges credentials for a fresh one. Exchange failures
// propagate untouched; no retry happens here.
func (c *CredentialCache) GetAccessToken(ctx context.Context, accountID, clientID, clientSecret string) (string, error) {
	key := accountID + ":" + clientID

	if entry, found := c.cache.Get(key); found {
		cached := entry.(cachedToken)
		if cached.expiresAt.After(c.now().Add(tokenExpiryMargin)) {
			return cached.accessToken, nil
		}
	}

	token, err := c.exchanger.ExchangeToken(ctx, accountID, clientID, clientSecret)
	if err != nil {
		return "", err
	}

	c.cache.Set(key, cachedToken{
		accessToken: token.AccessToken,
		expiresAt:   c.now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}, gocache.NoExpiration)

	return token.AccessToken, nil
}
