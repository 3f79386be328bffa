package sessionstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	e "authd/internal/core/domain/errors"
	"authd/internal/core/domain/user"

	"github.com/go-redis/redis/v9"
)

const keyPrefix = "session::"

// Redis keeps issued session tokens with a TTL; the user record itself
// stays in Postgres and is loaded through the user repository.
type Redis struct {
	redisClient    *redis.Client
	userRepository user.UserRepository
	validDuration  time.Duration
}

func NewRedis(
	redisClient *redis.Client,
	userRepository user.UserRepository,
	validDuration time.Duration,
) *Redis {
	if redisClient == nil {
		panic(e.NewNilArgumentError("redisClient"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	return &Redis{
		redisClient:    redisClient,
		userRepository: userRepository,
		validDuration:  validDuration,
	}
}

func (r *Redis) Create(ctx context.Context, input user.CreateSessionInput) error {
	return r.redisClient.Set(
		ctx,
		keyPrefix+string(input.Token),
		int64(input.UserID),
		r.validDuration,
	).Err()
}

func (r *Redis) GetUserByToken(ctx context.Context, token user.SessionToken) (u user.User, err error) {
	rawUserID, err := r.redisClient.Get(ctx, keyPrefix+string(token)).Result()
	if errors.Is(err, redis.Nil) {
		return u, user.ErrSessionDoesNotExist
	}
	if err != nil {
		return u, err
	}
	userID, err := strconv.ParseInt(rawUserID, 10, 64)
	if err != nil {
		return u, user.ErrSessionDoesNotExist
	}
	return r.userRepository.GetByID(ctx, user.ID(userID))
}
