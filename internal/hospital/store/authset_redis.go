package store

import (
	"context"
	"fmt"

	platformredis "vaxledger/internal/platform/redis"
	id "vaxledger/pkg/domain"
)

const authorizedSetKey = "vaxledger:authorized_hospitals"

// RedisAuthorizationSet keeps the fast-lookup set in Redis so IsAuthorized
// checks stay cheap across processes.
type RedisAuthorizationSet struct {
	client *platformredis.Client
}

func NewRedisAuthorizationSet(client *platformredis.Client) *RedisAuthorizationSet {
	return &RedisAuthorizationSet{client: client}
}

func (s *RedisAuthorizationSet) Set(ctx context.Context, identity id.Identity, authorized bool) error {
	var err error
	if authorized {
		err = s.client.SAdd(ctx, authorizedSetKey, identity.String()).Err()
	} else {
		err = s.client.SRem(ctx, authorizedSetKey, identity.String()).Err()
	}
	if err != nil {
		return fmt.Errorf("update authorization set: %w", err)
	}
	return nil
}

func (s *RedisAuthorizationSet) Contains(ctx context.Context, identity id.Identity) (bool, error) {
	ok, err := s.client.SIsMember(ctx, authorizedSetKey, identity.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check authorization set: %w", err)
	}
	return ok, nil
}
