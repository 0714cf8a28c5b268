package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Letter is a webhook delivery that could not be ingested, kept so it can be replayed.
type Letter struct {
	ID         string            `json:"id"`
	Shop       string            `json:"shop"`
	Topic      string            `json:"topic"`
	ReceivedAt time.Time         `json:"received_at"`
	Error      string            `json:"error"`
	Headers    map[string]string `json:"headers,omitempty"`
	// Payload is the raw body as received; it may not be valid JSON.
	Payload []byte `json:"payload"`
}

// DeadLetters archives failed deliveries under <prefix>/<shop>/<topic>/<ts>-<id>.json.
type DeadLetters struct {
	bucket Bucket
	prefix string
	now    func() time.Time
}

// NewDeadLetters creates an archive in bucket under prefix.
func NewDeadLetters(bucket Bucket, prefix string) *DeadLetters {
	return &DeadLetters{
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

// Archive stores letter and returns its object key. The write is durable once
// Archive returns nil.
func (d *DeadLetters) Archive(ctx context.Context, letter Letter) (string, error) {
	if letter.ID == "" {
		letter.ID = uuid.NewString()
	}
	if letter.ReceivedAt.IsZero() {
		letter.ReceivedAt = d.now().UTC()
	}

	data, err := json.Marshal(letter)
	if err != nil {
		return "", fmt.Errorf("failed to encode dead letter: %w", err)
	}

	key := d.key(letter)
	if err := d.bucket.Put(ctx, key, data, "application/json"); err != nil {
		return "", fmt.Errorf("failed to archive dead letter %s: %w", key, err)
	}
	return key, nil
}

// List returns the keys of all archived letters, oldest first.
func (d *DeadLetters) List(ctx context.Context) ([]string, error) {
	all, err := d.bucket.Keys(ctx, d.prefix+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to list dead letters: %w", err)
	}

	keys := make([]string, 0, len(all))
	for _, key := range all {
		if strings.HasSuffix(key, ".json") {
			keys = append(keys, key)
		}
	}

	// Object names start with a sortable timestamp.
	sort.Slice(keys, func(i, j int) bool {
		return path.Base(keys[i]) < path.Base(keys[j])
	})
	return keys, nil
}

// Load reads one archived letter.
func (d *DeadLetters) Load(ctx context.Context, key string) (*Letter, error) {
	data, err := d.bucket.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read dead letter %s: %w", key, err)
	}

	var letter Letter
	if err := json.Unmarshal(data, &letter); err != nil {
		return nil, fmt.Errorf("failed to decode dead letter %s: %w", key, err)
	}
	return &letter, nil
}

// Remove deletes an archived letter after a successful replay.
func (d *DeadLetters) Remove(ctx context.Context, key string) error {
	if err := d.bucket.Remove(ctx, key); err != nil {
		return fmt.Errorf("failed to remove dead letter %s: %w", key, err)
	}
	return nil
}

func (d *DeadLetters) key(letter Letter) string {
	shop := sanitizeSegment(letter.Shop)
	topic := sanitizeSegment(strings.ReplaceAll(letter.Topic, "/", "."))
	name := fmt.Sprintf("%s-%s.json", letter.ReceivedAt.UTC().Format("20060102T150405.000000000Z"), letter.ID)
	return path.Join(d.prefix, shop, topic, name)
}

func sanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
