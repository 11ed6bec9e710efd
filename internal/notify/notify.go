// Package notify tells the rest of the system which category-scoped content
// went stale after a mutation.
package notify

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// TagCategories is published on every change; it covers the navigation tree.
const TagCategories = "categories"

// Notifier receives "category content changed" signals. Implementations
// never fail the caller: a lost signal only delays a cache refresh.
type Notifier interface {
	CategoryChanged(ctx context.Context, categoryID, subcategoryID int64)
}

// Tags returns the invalidation tags for a category and optional subcategory.
// Zero ids are treated as absent.
func Tags(categoryID, subcategoryID int64) []string {
	tags := make([]string, 0, 3)
	if categoryID > 0 {
		cat := "category:" + strconv.FormatInt(categoryID, 10)
		tags = append(tags, cat)
		if subcategoryID > 0 {
			tags = append(tags, cat+":"+strconv.FormatInt(subcategoryID, 10))
		}
	}
	return append(tags, TagCategories)
}

// Noop drops every signal.
type Noop struct{}

func (Noop) CategoryChanged(context.Context, int64, int64) {}

// Publisher is the slice of *redis.Client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisNotifier publishes each tag as a message on one pub/sub channel.
type RedisNotifier struct {
	client  Publisher
	channel string
	logger  *slog.Logger
}

// NewRedisNotifier creates a notifier publishing on channel.
func NewRedisNotifier(client Publisher, channel string, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

// CategoryChanged publishes the tags for the change. Failures are logged.
func (n *RedisNotifier) CategoryChanged(ctx context.Context, categoryID, subcategoryID int64) {
	for _, tag := range Tags(categoryID, subcategoryID) {
		if err := n.client.Publish(ctx, n.channel, tag).Err(); err != nil {
			n.logger.Warn("cache invalidation publish failed",
				"channel", n.channel,
				"tag", tag,
				"error", err,
			)
			return
		}
	}
	n.logger.Debug("cache invalidation published", "category_id", categoryID, "subcategory_id", subcategoryID)
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a Redis client and pings it. It returns nil (and logs) when
// addr is empty or the server is unreachable, so callers fall back to Noop.
func Connect(ctx context.Context, opts RedisOptions, logger *slog.Logger) *redis.Client {
	if opts.Addr == "" {
		logger.Info("redis not configured, cache invalidation disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("failed to connect to redis, cache invalidation disabled", "addr", opts.Addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("redis connected", "addr", opts.Addr)
	return client
}

// New picks the Redis notifier when a client is available, Noop otherwise.
func New(client *redis.Client, channel string, logger *slog.Logger) Notifier {
	if client == nil {
		return Noop{}
	}
	return NewRedisNotifier(client, channel, logger)
}
