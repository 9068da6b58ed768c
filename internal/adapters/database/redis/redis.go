package redis

import (
	"context"
	"fmt"

	"github.com/campusevents/backend/internal/adapters/database/redis/feed"
	"github.com/campusevents/backend/pkg/logger/types"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
	Feed *feed.Feed
}

type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
	Channel  string
}

func New(opts Options, logger *types.Logger) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Client{
		Client: client,
		Feed:   feed.New(client, opts.Channel, logger),
	}, nil
}
