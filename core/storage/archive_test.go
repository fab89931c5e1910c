package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"netbox-reconciler/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestArchiver(client Client) *Archiver {
	a := NewArchiver(client, Config{Bucket: "reports-bucket", Prefix: "/reports/"}, zap.NewNop())
	a.now = func() time.Time { return time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC) }
	return a
}

func TestArchiver_Key(t *testing.T) {
	a := newTestArchiver(new(mocks.Client))
	assert.Equal(t, "reports/platform/2026/03/09/run-1.json", a.Key("platform", "run-1"))
}

func TestArchiver_EnsureBucket(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports-bucket").Return(true, nil)

		assert.NoError(t, newTestArchiver(client).EnsureBucket(context.Background()))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports-bucket").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "reports-bucket", mock.Anything).Return(nil)

		assert.NoError(t, newTestArchiver(client).EnsureBucket(context.Background()))
		client.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports-bucket").Return(false, errors.New("denied"))

		assert.ErrorContains(t, newTestArchiver(client).EnsureBucket(context.Background()), "denied")
	})
}

func TestArchiver_Store(t *testing.T) {
	client := new(mocks.Client)
	var uploaded []byte
	client.On("PutObject", mock.Anything, "reports-bucket", "reports/platform/2026/03/09/run-1.json", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
			opts := args.Get(5).(minio.PutObjectOptions)
			assert.Equal(t, "application/json", opts.ContentType)
		}).
		Return(minio.UploadInfo{}, nil)

	key, err := newTestArchiver(client).Store(context.Background(), "platform", "run-1", map[string]any{"changed": true})
	require.NoError(t, err)
	assert.Equal(t, "reports/platform/2026/03/09/run-1.json", key)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(uploaded, &decoded))
	assert.Equal(t, true, decoded["changed"])
}

func TestArchiver_StoreFails(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("no space"))

	_, err := newTestArchiver(client).Store(context.Background(), "platform", "run-1", map[string]any{})
	assert.ErrorContains(t, err, "no space")
}

func TestArchiver_Fetch(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "reports-bucket", "reports/x.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader([]byte(`{"changed":false}`))), nil)

	data, err := newTestArchiver(client).Fetch(context.Background(), "reports/x.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"changed":false}`, string(data))
}
