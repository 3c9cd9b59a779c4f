package redis

import (
	"context"
	"encoding/json"
	"fmt"
)

// Key helpers
func journalKey(terminalID string) string {
	return fmt.Sprintf("health_journal:%s", terminalID)
}

func statusKey(terminalID string) string {
	return fmt.Sprintf("health_status:%s", terminalID)
}

// Journal keeps a capped, newest-first list of cycle events per terminal so
// an external display can render recent history without querying the daemon.
type Journal struct {
	client     *Client
	terminalID string
	depth      int64
}

// NewJournal creates a journal bound to one terminal.
func NewJournal(client *Client, terminalID string, depth int) *Journal {
	if depth <= 0 {
		depth = 1000
	}
	return &Journal{client: client, terminalID: terminalID, depth: int64(depth)}
}

// Append pushes one event onto the journal, trimming to the configured depth.
func (j *Journal) Append(ctx context.Context, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal journal event: %w", err)
	}

	key := journalKey(j.terminalID)
	pipe := j.client.rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, j.depth-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append journal event: %w", err)
	}
	return nil
}

// SetStatus stores the latest status document for cheap external reads.
func (j *Journal) SetStatus(ctx context.Context, status any) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := j.client.rdb.Set(ctx, statusKey(j.terminalID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	return nil
}

// Recent returns up to n most recent raw journal entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int64) ([]string, error) {
	if n <= 0 {
		n = 10
	}
	entries, err := j.client.rdb.LRange(ctx, journalKey(j.terminalID), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange failed: %w", err)
	}
	return entries, nil
}

// Purge drops the journal and status keys for this terminal.
func (j *Journal) Purge(ctx context.Context) error {
	return j.client.rdb.Del(ctx, journalKey(j.terminalID), statusKey(j.terminalID)).Err()
}
