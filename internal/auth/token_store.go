package auth

import (
	"context"
	"strconv"
	"sync"
	"time"

	"akademi/pkg/database"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	// RefreshTokenPrefix 刷新令牌 key 前缀，值为用户 ID
	RefreshTokenPrefix = "refresh_token:"
	// UserRefreshTokensPrefix 用户的所有刷新令牌集合，用于改密码后全部撤销
	UserRefreshTokensPrefix = "user_refresh_tokens:"
	// ResetTokenPrefix 密码重置令牌 key 前缀
	ResetTokenPrefix = "password_reset:"
)

// ErrTokenNotFound 令牌不存在、已过期或已被使用
var ErrTokenNotFound = errors.New("token not found or expired")

// RefreshTokenRepository 刷新令牌存储在 Redis
type RefreshTokenRepository struct {
	redis *database.RedisClient
	ttl   time.Duration
}

func NewRefreshTokenRepository(redisClient *database.RedisClient, ttl time.Duration) *RefreshTokenRepository {
	return &RefreshTokenRepository{redis: redisClient, ttl: ttl}
}

// TTL 刷新令牌有效期，也用作 cookie 的 max-age
func (r *RefreshTokenRepository) TTL() time.Duration {
	return r.ttl
}

// Create 保存刷新令牌，并加入该用户的令牌集合
func (r *RefreshTokenRepository) Create(ctx context.Context, token string, userID uint) error {
	userTokensKey := userTokensKey(userID)

	pipe := r.redis.TxPipeline()
	pipe.Set(ctx, RefreshTokenPrefix+token, userID, r.ttl)
	pipe.SAdd(ctx, userTokensKey, token)
	pipe.Expire(ctx, userTokensKey, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "store refresh token")
	}
	return nil
}

// Consume 取出并删除刷新令牌，同一个令牌只能换一次
func (r *RefreshTokenRepository) Consume(ctx context.Context, token string) (uint, error) {
	val, err := r.redis.GetDel(ctx, RefreshTokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrTokenNotFound
		}
		return 0, errors.Wrap(err, "consume refresh token")
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "malformed refresh token data")
	}
	r.redis.SRem(ctx, userTokensKey(uint(userID)), token)
	return uint(userID), nil
}

// Delete 撤销刷新令牌（登出）
func (r *RefreshTokenRepository) Delete(ctx context.Context, token string) error {
	_, err := r.Consume(ctx, token)
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		return errors.Wrap(err, "revoke refresh token")
	}
	return nil
}

// DeleteAllByUserID 撤销用户的所有刷新令牌（重置密码、删除用户）
func (r *RefreshTokenRepository) DeleteAllByUserID(ctx context.Context, userID uint) error {
	key := userTokensKey(userID)
	tokens, err := r.redis.SMembers(ctx, key).Result()
	if err != nil {
		return errors.Wrap(err, "list user refresh tokens")
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, RefreshTokenPrefix+token)
	}
	keys = append(keys, key)
	if err := r.redis.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "revoke user refresh tokens")
	}
	return nil
}

// CountActiveSessionsByUserID 用户当前有效的刷新令牌数
func (r *RefreshTokenRepository) CountActiveSessionsByUserID(ctx context.Context, userID uint) (int, error) {
	n, err := r.redis.SCard(ctx, userTokensKey(userID)).Result()
	if err != nil {
		return 0, errors.Wrap(err, "count active sessions")
	}
	return int(n), nil
}

func userTokensKey(userID uint) string {
	return UserRefreshTokensPrefix + strconv.FormatUint(uint64(userID), 10)
}

// ResetTokenStore 密码重置令牌，一次性使用
type ResetTokenStore interface {
	Save(ctx context.Context, token string, userID uint, ttl time.Duration) error
	// Consume 返回令牌对应的用户并使其失效；不存在或已过期时返回 ErrTokenNotFound
	Consume(ctx context.Context, token string) (uint, error)
}

// RedisResetTokenStore 重置令牌存储在 Redis，到期自动删除
type RedisResetTokenStore struct {
	redis *database.RedisClient
}

var _ ResetTokenStore = (*RedisResetTokenStore)(nil)

func NewRedisResetTokenStore(redisClient *database.RedisClient) *RedisResetTokenStore {
	return &RedisResetTokenStore{redis: redisClient}
}

func (s *RedisResetTokenStore) Save(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	return errors.Wrap(s.redis.Set(ctx, ResetTokenPrefix+token, userID, ttl).Err(), "store reset token")
}

func (s *RedisResetTokenStore) Consume(ctx context.Context, token string) (uint, error) {
	val, err := s.redis.GetDel(ctx, ResetTokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrTokenNotFound
		}
		return 0, errors.Wrap(err, "consume reset token")
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "malformed reset token data")
	}
	return uint(userID), nil
}

// MemoryResetTokenStore 未启用 Redis 时使用，只在单实例内有效
type MemoryResetTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
	now    func() time.Time
}

type memoryToken struct {
	userID    uint
	expiresAt time.Time
}

var _ ResetTokenStore = (*MemoryResetTokenStore)(nil)

func NewMemoryResetTokenStore() *MemoryResetTokenStore {
	return &MemoryResetTokenStore{
		tokens: make(map[string]memoryToken),
		now:    time.Now,
	}
}

func (s *MemoryResetTokenStore) Save(_ context.Context, token string, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, v := range s.tokens {
		if !now.Before(v.expiresAt) {
			delete(s.tokens, k)
		}
	}
	s.tokens[token] = memoryToken{userID: userID, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryResetTokenStore) Consume(_ context.Context, token string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok {
		return 0, ErrTokenNotFound
	}
	delete(s.tokens, token)
	if !s.now().Before(t.expiresAt) {
		return 0, ErrTokenNotFound
	}
	return t.userID, nil
}
