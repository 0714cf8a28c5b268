package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminStub struct {
	exists    bool
	existsErr error
	made      []minio.MakeBucketOptions
	makeErr   error
}

func (a *adminStub) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return a.exists, a.existsErr
}

func (a *adminStub) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	a.made = append(a.made, opts)
	return a.makeErr
}

func TestOpen(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		bucket, err := Open(Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "ledger",
			Region:    "us-east-1",
		})
		require.NoError(t, err)
		assert.NotNil(t, bucket)
	})

	t.Run("EndpointWithScheme", func(t *testing.T) {
		bucket, err := Open(Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "ledger",
		})
		require.NoError(t, err)
		assert.Equal(t, "https", bucket.(*minioBucket).client.EndpointURL().Scheme)
	})

	t.Run("NoBucket", func(t *testing.T) {
		_, err := Open(Config{Endpoint: "localhost:9000"})
		assert.Error(t, err)
	})
}

func TestSplitEndpoint(t *testing.T) {
	host, secure := splitEndpoint("https://s3.amazonaws.com", false)
	assert.Equal(t, "s3.amazonaws.com", host)
	assert.True(t, secure)

	host, secure = splitEndpoint("http://minio:9000", true)
	assert.Equal(t, "minio:9000", host)
	assert.True(t, secure)

	host, secure = splitEndpoint("minio:9000", false)
	assert.Equal(t, "minio:9000", host)
	assert.False(t, secure)
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		admin := &adminStub{exists: true}
		assert.NoError(t, ensureBucket(ctx, admin, "ledger", ""))
		assert.Empty(t, admin.made)
	})

	t.Run("Creates", func(t *testing.T) {
		admin := &adminStub{}
		assert.NoError(t, ensureBucket(ctx, admin, "ledger", "eu-west-1"))
		assert.Equal(t, []minio.MakeBucketOptions{{Region: "eu-west-1"}}, admin.made)
	})

	t.Run("Unreachable", func(t *testing.T) {
		admin := &adminStub{existsErr: errors.New("dial tcp: refused")}
		err := ensureBucket(ctx, admin, "ledger", "")
		assert.ErrorContains(t, err, "failed to check bucket ledger")
	})
}

func TestConfigTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, Config{}.Timeout())
	assert.Equal(t, 5*time.Second, Config{TimeoutSeconds: 5}.Timeout())
}
