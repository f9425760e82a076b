//go:build integration

package integration

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GameCatalog/internal/games"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8082")

func TestSystem_E2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	c := games.NewClient(baseURL)
	waitReady(t, ctx, c)

	name := fmt.Sprintf("E2E Game %d-%d", time.Now().Unix(), rand.Intn(100000))
	created, err := c.Insert(ctx, games.Input{Name: name, Producer: "E2E Studio", Price: 9.99})
	require.NoError(t, err)

	_, err = c.Insert(ctx, games.Input{Name: name, Producer: "E2E Studio", Price: 1})
	assert.Equal(t, games.KindDuplicate, games.KindOf(err))

	list, err := c.List(ctx, games.Page{Number: 1, Size: games.MaxPageSize})
	require.NoError(t, err)
	assert.NotEmpty(t, list)
	assert.LessOrEqual(t, len(list), games.MaxPageSize)

	require.NoError(t, c.UpdatePrice(ctx, created.ID, 4.99))

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		restartAndWait(t, ctx, c)
	}

	got, ok, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok, "game should survive a restart when backed by postgres")
	assert.Equal(t, 4.99, got.Price)
	assert.Equal(t, name, got.Name)

	require.NoError(t, c.Remove(ctx, created.ID))
	_, ok, err = c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
