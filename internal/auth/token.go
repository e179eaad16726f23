package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"filedeck/internal/common"
	"filedeck/internal/idgen"
	"filedeck/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims carried by a session token. The user record's
// display fields ride along so the session can be restored without a
// database round trip.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	CreatedAt int64  `json:"cat,omitempty"`
	Anonymous bool   `json:"anon,omitempty"`
}

// TokenProvider implements both Provider and session.Store with HS256
// tokens kept in a TokenStorage. Subscribers to Changes see every sign-in
// and sign-out.
type TokenProvider struct {
	secret   []byte
	validity time.Duration
	tokens   TokenStorage

	mu   sync.Mutex
	subs []chan Identity
}

func NewTokenProvider(secret []byte, validity time.Duration, tokens TokenStorage) *TokenProvider {
	return &TokenProvider{secret: secret, validity: validity, tokens: tokens}
}

func (p *TokenProvider) sign(c Claims) (string, error) {
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(p.validity))
	c.IssuedAt = jwt.NewNumericDate(time.Now())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (p *TokenProvider) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		// Expired or tampered tokens end the session rather than erroring.
		return nil, common.ErrNotAuthenticated
	}
	return claims, nil
}

func (p *TokenProvider) notify(id Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- id:
		default:
		}
	}
}

// Set implements session.Store: it signs a token for user and persists it.
func (p *TokenProvider) Set(ctx context.Context, user *models.User) error {
	token, err := p.sign(Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return err
	}
	if err := p.tokens.Save(ctx, token); err != nil {
		return err
	}

	p.notify(Identity{UserID: user.ID, Email: user.Email, Name: user.Name})
	return nil
}

// Current implements session.Store: it restores the user from the stored
// token, or fails with common.ErrNotAuthenticated.
func (p *TokenProvider) Current(ctx context.Context) (*models.User, error) {
	token, err := p.tokens.Load(ctx)
	if err != nil {
		return nil, err
	}

	claims, err := p.parse(token)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
	}
	if claims.CreatedAt != 0 {
		user.CreatedAt = time.UnixMilli(claims.CreatedAt).UTC()
	}
	return user, nil
}

// Clear implements session.Store. Clearing twice is a no-op.
func (p *TokenProvider) Clear(ctx context.Context) error {
	if err := p.tokens.Clear(ctx); err != nil {
		return err
	}
	p.notify(Identity{})
	return nil
}

func (p *TokenProvider) CurrentIdentity(ctx context.Context) (*Identity, error) {
	token, err := p.tokens.Load(ctx)
	if err != nil {
		return nil, err
	}

	claims, err := p.parse(token)
	if err != nil {
		return nil, err
	}

	return &Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Name:      claims.Name,
		Anonymous: claims.Anonymous,
	}, nil
}

func (p *TokenProvider) SignInAnonymously(ctx context.Context) (*Identity, error) {
	id, err := idgen.New()
	if err != nil {
		return nil, err
	}

	token, err := p.sign(Claims{UserID: id, Anonymous: true})
	if err != nil {
		return nil, err
	}
	if err := p.tokens.Save(ctx, token); err != nil {
		return nil, err
	}

	identity := Identity{UserID: id, Anonymous: true}
	p.notify(identity)
	return &identity, nil
}

func (p *TokenProvider) Changes() <-chan Identity {
	ch := make(chan Identity, 8)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}
