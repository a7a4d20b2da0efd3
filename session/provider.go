// Package session issues and resolves bearer sessions and lets a client
// follow its own session through sign-out and refresh.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/models"
	"eventhub/utils"
)

var ErrRevoked = errors.New("session revoked")

type Session struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        models.User `json:"user"`
}

type Provider struct {
	secret string
	ttl    time.Duration
	deny   Denylist
	hub    *Hub
}

func NewProvider(secret string, ttl time.Duration, deny Denylist, hub *Hub) *Provider {
	return &Provider{secret: secret, ttl: ttl, deny: deny, hub: hub}
}

func (p *Provider) Hub() *Hub { return p.hub }

func (p *Provider) issue(u models.User, gen int64) (Session, *utils.Claims, error) {
	raw, c, err := utils.GenerateToken(p.secret, u.ID, u.Email, u.FullName, gen, p.ttl)
	if err != nil {
		return Session{}, nil, fmt.Errorf("sign token: %w", err)
	}
	return Session{
		AccessToken: raw,
		TokenType:   "bearer",
		ExpiresAt:   c.ExpiresAt.Time,
		User:        u,
	}, c, nil
}

// SignIn issues a session for an identity that has already been
// authenticated.
func (p *Provider) SignIn(ctx context.Context, u models.User) (Session, error) {
	gen, err := p.deny.Generation(ctx, u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("read session generation: %w", err)
	}
	s, _, err := p.issue(u, gen)
	return s, err
}

// Resolve verifies raw and rejects tokens revoked by sign-out or refresh.
func (p *Provider) Resolve(ctx context.Context, raw string) (*utils.Claims, error) {
	c, err := utils.VerifyToken(p.secret, raw)
	if err != nil {
		return nil, err
	}
	revoked, err := p.deny.IsRevoked(ctx, c.ID, c.UserID, c.Gen)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}
	return c, nil
}

// Current rebuilds the session a resolved token belongs to.
func (p *Provider) Current(raw string, c *utils.Claims) Session {
	return Session{
		AccessToken: raw,
		TokenType:   "bearer",
		ExpiresAt:   c.ExpiresAt.Time,
		User:        IdentityOf(c),
	}
}

func (p *Provider) revoke(ctx context.Context, c *utils.Claims) error {
	ttl := time.Until(c.ExpiresAt.Time)
	if err := p.deny.Revoke(ctx, c.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// SignOut ends every session of the user, not only the one c came from,
// and tells every one of their feeds.
func (p *Provider) SignOut(ctx context.Context, c *utils.Claims) error {
	if err := p.deny.RevokeAll(ctx, c.UserID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	p.hub.Publish(c.UserID, Change{Kind: SignedOut})
	return nil
}

// Refresh swaps the token for a new one with a fresh expiry. Only the feed
// following the old token hears about it.
func (p *Provider) Refresh(ctx context.Context, c *utils.Claims) (Session, error) {
	s, fresh, err := p.issue(IdentityOf(c), c.Gen)
	if err != nil {
		return Session{}, err
	}
	if err := p.revoke(ctx, c); err != nil {
		return Session{}, err
	}
	p.hub.Publish(c.UserID, Change{Kind: TokenRefreshed, Session: &s, token: c.ID, rotate: fresh.ID})
	return s, nil
}

func IdentityOf(c *utils.Claims) models.User {
	return models.User{ID: c.UserID, Email: c.Email, FullName: c.Name}
}
