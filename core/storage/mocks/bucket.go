package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Bucket is a mock implementation of storage.Bucket
type Bucket struct {
	mock.Mock
}

func (m *Bucket) Ensure(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *Bucket) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *Bucket) Keys(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

func (m *Bucket) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
