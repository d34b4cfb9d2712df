package redis_session_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	redis_session "github.com/mborhani/vizboard/internal/session/redis"
)

func TestRedisSessionStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	redisC, err := tcRedis.RunContainer(ctx, testcontainers.WithWaitStrategy(wait.ForListeningPort("6379/tcp")))
	if err != nil {
		t.Fatalf("redis container: %v", err)
	}
	defer func() { _ = redisC.Terminate(ctx) }()

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis ping: %v", err)
	}
	store := redis_session.NewWithClient(client)

	sess, err := store.EnsureSession("", time.Hour)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if sess.ID() == "" {
		t.Fatal("id should not be empty")
	}

	st, err := sess.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if st.ChartType != "scatter" {
		t.Fatalf("fresh chart type = %q, want scatter", st.ChartType)
	}

	st.Snapshot = `{"columns":["x","y"],"index":[0],"data":[[1,2]]}`
	st.X, st.Y = "x", "y"
	if err := sess.Set(st); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reused, err := store.EnsureSession(sess.ID(), time.Hour)
	if err != nil {
		t.Fatalf("EnsureSession reuse: %v", err)
	}
	if reused.ID() != sess.ID() {
		t.Fatalf("session not reused: %s vs %s", sess.ID(), reused.ID())
	}
	back, err := reused.Get()
	if err != nil {
		t.Fatalf("Get after reuse: %v", err)
	}
	if back != st {
		t.Fatalf("state lost across reuse: %+v vs %+v", back, st)
	}

	missing, err := store.GetSession("no-such-id")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if missing != nil {
		t.Fatal("missing session should be nil")
	}
}
