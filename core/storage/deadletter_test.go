package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"inventory-ledger/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var received = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestDeadLetters(bucket Bucket) *DeadLetters {
	d := NewDeadLetters(bucket, "/deadletter/")
	d.now = func() time.Time { return received }
	return d
}

func TestDeadLetters_Archive(t *testing.T) {
	bucket := new(mocks.Bucket)
	d := newTestDeadLetters(bucket)
	ctx := context.Background()

	var stored []byte
	bucket.On("Put", ctx, "deadletter/shop.myshopify.com/inventory_levels.update/20240310T120000.000000000Z-abc.json",
		mock.Anything, "application/json").
		Run(func(args mock.Arguments) {
			stored = args.Get(2).([]byte)
		}).
		Return(nil)

	key, err := d.Archive(ctx, Letter{
		ID:      "abc",
		Shop:    "shop.myshopify.com",
		Topic:   "inventory_levels/update",
		Error:   "malformed input",
		Payload: []byte(`{"available":`),
	})
	require.NoError(t, err)
	assert.Equal(t, "deadletter/shop.myshopify.com/inventory_levels.update/20240310T120000.000000000Z-abc.json", key)

	var letter Letter
	require.NoError(t, json.Unmarshal(stored, &letter))
	assert.Equal(t, []byte(`{"available":`), letter.Payload)
	assert.Equal(t, received, letter.ReceivedAt)
	bucket.AssertExpectations(t)
}

func TestDeadLetters_ArchiveFailure(t *testing.T) {
	bucket := new(mocks.Bucket)
	d := newTestDeadLetters(bucket)

	bucket.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("503 slow down"))

	_, err := d.Archive(context.Background(), Letter{Shop: "s", Topic: "t"})
	assert.ErrorContains(t, err, "failed to archive dead letter")
}

func TestDeadLetters_ListSortsOldestFirst(t *testing.T) {
	bucket := new(mocks.Bucket)
	d := newTestDeadLetters(bucket)

	bucket.On("Keys", mock.Anything, "deadletter/").Return([]string{
		"deadletter/b/refunds.create/20240310T130000.000000000Z-2.json",
		"deadletter/a/inventory_levels.update/20240310T110000.000000000Z-1.json",
		"deadletter/a/README",
	}, nil)

	keys, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"deadletter/a/inventory_levels.update/20240310T110000.000000000Z-1.json",
		"deadletter/b/refunds.create/20240310T130000.000000000Z-2.json",
	}, keys)
}

func TestDeadLetters_ListError(t *testing.T) {
	bucket := new(mocks.Bucket)
	d := newTestDeadLetters(bucket)

	bucket.On("Keys", mock.Anything, "deadletter/").Return(nil, errors.New("access denied"))

	_, err := d.List(context.Background())
	assert.ErrorContains(t, err, "access denied")
}

func TestDeadLetters_LoadAndRemove(t *testing.T) {
	bucket := new(mocks.Bucket)
	d := newTestDeadLetters(bucket)
	ctx := context.Background()

	data, err := json.Marshal(Letter{ID: "1", Shop: "s", Topic: "refunds/create", Payload: []byte(`{}`)})
	require.NoError(t, err)
	bucket.On("Get", ctx, "k").Return(data, nil)
	bucket.On("Remove", ctx, "k").Return(nil)

	letter, err := d.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "refunds/create", letter.Topic)
	assert.Equal(t, []byte(`{}`), letter.Payload)

	assert.NoError(t, d.Remove(ctx, "k"))
	bucket.AssertExpectations(t)
}

func TestDeadLetters_LoadMissing(t *testing.T) {
	bucket := new(mocks.Bucket)
	d := newTestDeadLetters(bucket)

	bucket.On("Get", mock.Anything, "k").Return(nil, ErrNotFound)

	_, err := d.Load(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeadLetters_LoadCorrupt(t *testing.T) {
	bucket := new(mocks.Bucket)
	d := newTestDeadLetters(bucket)

	bucket.On("Get", mock.Anything, "k").Return([]byte("not json"), nil)

	_, err := d.Load(context.Background(), "k")
	assert.ErrorContains(t, err, "failed to decode dead letter k")
}

func TestSanitizeSegment(t *testing.T) {
	assert.Equal(t, "unknown", sanitizeSegment(" "))
	assert.Equal(t, "a_b.myshopify.com", sanitizeSegment("a b.myshopify.com"))
}
