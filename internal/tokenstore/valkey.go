package tokenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// Valkey is a Store backed by a Valkey instance, so the token survives
// gateway restarts.
type Valkey struct {
	client rueidis.Client
	key    string
}

func NewValkey(cfg Config) (*Valkey, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.Addr},
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = "courtbook:auth:token"
	}

	return &Valkey{client: client, key: key}, nil
}

func (v *Valkey) Token(ctx context.Context) (string, error) {
	token, err := v.client.Do(ctx, v.client.B().Get().Key(v.key).Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("token lookup error: %w", err)
	}
	return token, nil
}

func (v *Valkey) Save(ctx context.Context, token string) error {
	if err := v.client.Do(ctx, v.client.B().Set().Key(v.key).Value(token).Build()).Error(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (v *Valkey) Clear(ctx context.Context) error {
	if err := v.client.Do(ctx, v.client.B().Del().Key(v.key).Build()).Error(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

func (v *Valkey) Close() {
	v.client.Close()
}
