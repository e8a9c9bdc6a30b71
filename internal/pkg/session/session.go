package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/errors"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/status"
)

type contextKey string

const accountKey contextKey = "session.account"

// Account is the authenticated principal attached to the request context.
// Role distinguishes company admins from gate staff.
type Account struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

type Session interface {
	Get(ctx context.Context, key string) (Account, error)
	Set(ctx context.Context, key string, account Account, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type redisSessionStore struct {
	logger *logrus.Logger
	client *redis.Client
}

func NewRedisSessionStore(logger *logrus.Logger, client *redis.Client) Session {
	return &redisSessionStore{
		logger: logger,
		client: client,
	}
}

func sessionKey(key string) string {
	return fmt.Sprintf("session:%s", key)
}

func (s *redisSessionStore) Get(ctx context.Context, key string) (Account, error) {
	value, err := s.client.Get(ctx, sessionKey(key)).Result()
	if err == redis.Nil {
		return Account{}, errors.New(http.StatusUnauthorized, status.UNAUTHORIZED, "session has expired")
	}
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
		return Account{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting session")
	}

	var account Account
	if err := json.Unmarshal([]byte(value), &account); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
		return Account{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting session")
	}

	return account, nil
}

func (s *redisSessionStore) Set(ctx context.Context, key string, account Account, ttl time.Duration) error {
	buff, _ := json.Marshal(account)

	if err := s.client.Set(ctx, sessionKey(key), buff, ttl).Err(); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while storing session")
	}

	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, sessionKey(key)).Err(); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while deleting session")
	}

	return nil
}

func SetAccountToCtx(ctx context.Context, account Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

func GetAccountFromCtx(ctx context.Context) (Account, error) {
	account, ok := ctx.Value(accountKey).(Account)
	if !ok {
		return Account{}, errors.New(http.StatusUnauthorized, status.UNAUTHORIZED, "no account in session")
	}

	return account, nil
}
