package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/redis-mcp/store"
)

// Message is a minimal persisted view of a chat turn.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text,omitempty"`
}

// LoadConversation reads the transcript stored under key. A missing key
// yields a nil slice and no error.
func LoadConversation(ctx context.Context, svc store.Service, key string) ([]Message, error) {
	raw, found, err := svc.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found || raw == "" {
		return nil, nil
	}
	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, fmt.Errorf("decode conversation %q: %w", key, err)
	}
	return msgs, nil
}

// SaveConversation overwrites the transcript stored under key.
func SaveConversation(ctx context.Context, svc store.Service, key string, msgs []Message) error {
	b, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	return svc.Put(ctx, key, string(b))
}
