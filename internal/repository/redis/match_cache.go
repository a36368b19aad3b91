package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/gridarena/server/pkg/arena"
)

func stateKey(matchID int64) string {
	return "match:" + strconv.FormatInt(matchID, 10) + ":state"
}

// SetSnapshot stores the live match snapshot JSON. The snapshot is a pure
// cache; Postgres stays authoritative.
func (c *Client) SetSnapshot(ctx context.Context, matchID int64, state *arena.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return c.rdb.Set(ctx, stateKey(matchID), data, 0).Err()
}

// GetSnapshot retrieves the live match snapshot, or nil on a cache miss.
func (c *Client) GetSnapshot(ctx context.Context, matchID int64) (*arena.State, error) {
	data, err := c.rdb.Get(ctx, stateKey(matchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	var s arena.State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// DeleteSnapshot removes the cached snapshot (on match delete or completion).
func (c *Client) DeleteSnapshot(ctx context.Context, matchID int64) error {
	return c.rdb.Del(ctx, stateKey(matchID)).Err()
}
