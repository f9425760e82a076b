//go:build integration

package integration

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"GameCatalog/internal/games"
)

// composeService is the docker compose service that runs the games API.
var composeService = getenv("E2E_COMPOSE_SERVICE", "catalog")

// restartAndWait bounces the games container and blocks until /readyz
// answers again, so the caller can check what survived the restart.
func restartAndWait(t *testing.T, ctx context.Context, c *games.Client) {
	t.Helper()

	out, err := exec.CommandContext(ctx, "docker", "compose", "restart", composeService).CombinedOutput()
	if err != nil {
		t.Fatalf("restart %s: %v\n%s", composeService, err, out)
	}
	waitReady(t, ctx, c)
}

func waitReady(t *testing.T, ctx context.Context, c *games.Client) {
	t.Helper()

	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()

	deadline := time.After(60 * time.Second)
	for {
		if err := c.Ping(ctx); err == nil {
			return
		}
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready at %s: %v", c.BaseURL, ctx.Err())
		case <-deadline:
			t.Fatalf("service not ready at %s", c.BaseURL)
		case <-tick.C:
		}
	}
}
