// internal/app/auth.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
)

const (
	sessionKeyTpl = "session:%s"
	tokenPrefix   = "sk-hsg-"
)

// Sessions is the thin session-token layer in front of the core: it mints
// bearer tokens on login and resolves them back into the authenticated
// (account, role, subject) triple every operation receives. When auth is
// disabled (local dev), every request resolves to an admin actor.
type Sessions struct {
	enabled     bool
	redis       *redis.Client
	tokenHeader string
	ttl         time.Duration
}

func NewSessions(config *Config) (*Sessions, error) {
	if !config.Server.EnableAuth {
		return &Sessions{enabled: false, tokenHeader: config.Auth.TokenHeader}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Sessions{
		enabled:     true,
		redis:       client,
		tokenHeader: config.Auth.TokenHeader,
		ttl:         time.Duration(config.Auth.SessionTTLHours) * time.Hour,
	}, nil
}

func (s *Sessions) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

func (s *Sessions) TokenHeader() string {
	return s.tokenHeader
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

// Create mints a token for the account and stores its actor triple.
func (s *Sessions) Create(ctx context.Context, account models.Account) (string, error) {
	if !s.enabled {
		return "", nil
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"account_id": account.ID,
		"role":       string(account.Role),
		"subject":    account.Subject,
	})
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Resolve turns a bearer token back into the actor triple.
func (s *Sessions) Resolve(ctx context.Context, token string) (*models.Actor, error) {
	if !s.enabled {
		return &models.Actor{Role: models.RoleAdmin}, nil
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	fields, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("session not found")
	}

	accountID, err := strconv.ParseInt(fields["account_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session: %w", err)
	}

	return &models.Actor{
		AccountID: accountID,
		Role:      models.Role(fields["role"]),
		Subject:   fields["subject"],
	}, nil
}

// Destroy drops a session, invalidating its token.
func (s *Sessions) Destroy(ctx context.Context, token string) error {
	if !s.enabled {
		return nil
	}
	key := fmt.Sprintf(sessionKeyTpl, token)
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}
