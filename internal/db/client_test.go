package db_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/krishi-ai/krishi-go/internal/db"
	"github.com/krishi-ai/krishi-go/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestClientConnect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client, err := db.NewClient(ctx, getTestConfig(), logger)
	require.NoError(t, err, "should connect to SurrealDB")
	defer client.Close(ctx)

	assert.NotNil(t, client.DB(), "should have valid DB reference")

	require.NoError(t, client.InitSchema(ctx), "should initialize schema without error")

	collector := metrics.NewCollector()
	client.SetMetrics(collector)

	result, err := client.Query(ctx, "INFO FOR DB", nil)
	require.NoError(t, err, "should query database info")
	assert.NotNil(t, result)

	// Query timings land in the collector under db_query.
	snap := collector.Snapshot()
	require.Contains(t, snap.Operations, metrics.OpDBQuery)
	assert.Equal(t, int64(1), snap.Operations[metrics.OpDBQuery].Count)
}

// TestClientAgainstContainer spins up a throwaway SurrealDB container and
// runs schema init plus a round trip against it. Requires Docker.
func TestClientAgainstContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	if os.Getenv("KRISHI_TEST_CONTAINERS") == "" {
		t.Skip("set KRISHI_TEST_CONTAINERS=1 to run container tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v2",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--user", "root", "--pass", "root", "memory"},
			WaitingFor:   wait.ForListeningPort("8000/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err, "should start SurrealDB container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8000")
	require.NoError(t, err)

	cfg := db.Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, port.Port()),
		Namespace: "test_krishi",
		Database:  "test_advisory",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}

	client, err := db.NewClient(ctx, cfg, nil)
	require.NoError(t, err, "should connect to containerized SurrealDB")
	defer client.Close(ctx)

	require.NoError(t, client.InitSchema(ctx))

	farmer, err := client.CreateFarmer(ctx, "Asha Patil", "9876500001", "mr")
	require.NoError(t, err)
	assert.Equal(t, "Asha Patil", farmer.Name)

	got, err := client.GetFarmer(ctx, farmer.FarmerID)
	require.NoError(t, err)
	assert.Equal(t, farmer.MobileNo, got.MobileNo)
}
