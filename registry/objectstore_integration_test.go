package registry

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startMinio(ctx context.Context) (_ testcontainers.Container, _ ObjectStoreConfig, err error) {
	// testcontainers panics when no Docker daemon is reachable.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker not available: %v", r)
		}
	}()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			Cmd: []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/ready").
				WithPort("9000/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, ObjectStoreConfig{}, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, ObjectStoreConfig{}, err
	}
	port, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, ObjectStoreConfig{}, err
	}

	return container, ObjectStoreConfig{
		Endpoint:        host + ":" + port.Port(),
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		Region:          "us-east-1",
		Bucket:          "snapshots",
		Key:             "observers.yaml",
	}, nil
}

func TestObjectStore_PublishAndLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, cfg, err := startMinio(ctx)
	if err != nil {
		t.Skipf("skipping object store integration test: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	t.Run("missing object", func(t *testing.T) {
		store, err := NewObjectStore(cfg)
		require.NoError(t, err)

		_, err = store.Load(ctx)
		assert.ErrorIs(t, err, ErrSnapshotNotFound)
	})

	for _, key := range []string{"observers.yaml", "nested/observers.json"} {
		t.Run(key, func(t *testing.T) {
			c := cfg
			c.Key = key
			rec := &recordingObserver{}
			store, err := NewObjectStore(c)
			require.NoError(t, err)
			store.WithObserver(rec)

			want, err := Decode(strings.NewReader(sampleYAML), FormatYAML)
			require.NoError(t, err)
			require.NoError(t, store.Publish(ctx, want))

			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, IDs(want.Observers()), IDs(got.Observers()))
			assert.Equal(t, want.Classes, got.Classes)

			require.Len(t, rec.ops, 2)
			assert.Equal(t, "publish_snapshot", rec.ops[0].Operation)
			assert.Equal(t, "load_snapshot", rec.ops[1].Operation)
			assert.NoError(t, rec.ops[1].Error)
		})
	}
}
