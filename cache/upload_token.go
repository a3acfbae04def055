package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenStore mints and consumes one-time upload tokens. A token is valid
// for a single upload attempt within its TTL; consuming it a second time
// fails.
type TokenStore interface {
	Mint(ctx context.Context) (string, error)
	Consume(ctx context.Context, token string) (bool, error)
}

const tokenKeyPrefix = "uploadlink:"

// RedisTokenStore signs tokens with HS256 and tracks single-use jti values
// in redis.
type RedisTokenStore struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewRedisTokenStore creates a token store with the given signing secret and
// link lifetime.
func NewRedisTokenStore(rdb *redis.Client, secret string, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb, secret: []byte(secret), ttl: ttl}
}

// Mint creates a fresh single-use token and registers it for consumption.
func (s *RedisTokenStore) Mint(ctx context.Context) (string, error) {
	token, jti, err := signToken(s.secret, s.ttl)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, tokenKeyPrefix+jti, 1, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to register upload token: %w", err)
	}
	return token, nil
}

// Consume validates the token and burns its jti. Returns false for expired,
// malformed, unknown, and already-used tokens.
func (s *RedisTokenStore) Consume(ctx context.Context, token string) (bool, error) {
	jti, err := parseToken(s.secret, token)
	if err != nil {
		return false, nil
	}
	// GetDel is atomic: exactly one caller wins a given jti.
	if err := s.rdb.GetDel(ctx, tokenKeyPrefix+jti).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to consume upload token: %w", err)
	}
	return true, nil
}

func signToken(secret []byte, ttl time.Duration) (token, jti string, err error) {
	jti = uuid.NewString()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign upload token: %w", err)
	}
	return token, jti, nil
}

func parseToken(secret []byte, token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.ID == "" {
		return "", errors.New("token missing jti")
	}
	return claims.ID, nil
}
