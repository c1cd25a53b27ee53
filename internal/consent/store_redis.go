package consent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"healthledger/pkg/platform/sentinel"
)

// RedisStore keeps grants in one hash per subject, field per grantee.
// Entries deliberately carry no redis TTL: expiry is evaluated lazily by the
// service, and a lapsed grant must stay observable through ExpiryOf until it
// is revoked or overwritten.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func grantHashKey(subject string) string {
	return fmt.Sprintf("grants:%s", subject)
}

func (s *RedisStore) Put(ctx context.Context, grant Grant) error {
	value, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("marshal grant: %w", err)
	}
	if err := s.client.HSet(ctx, grantHashKey(grant.Subject), grant.Grantee, value).Err(); err != nil {
		return fmt.Errorf("put grant: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, subject, grantee string) (Grant, error) {
	value, err := s.client.HGet(ctx, grantHashKey(subject), grantee).Bytes()
	if errors.Is(err, redis.Nil) {
		return Grant{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Grant{}, fmt.Errorf("get grant: %w", err)
	}
	var grant Grant
	if err := json.Unmarshal(value, &grant); err != nil {
		return Grant{}, fmt.Errorf("unmarshal grant: %w", err)
	}
	return grant, nil
}

func (s *RedisStore) Delete(ctx context.Context, subject, grantee string) error {
	if err := s.client.HDel(ctx, grantHashKey(subject), grantee).Err(); err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	return nil
}
