package container_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/pnscred/container"
)

func TestNewRedisConnMaker(t *testing.T) {
	srv := miniredis.RunT(t)

	t.Run("single", func(t *testing.T) {
		m, err := container.NewRedisConnMaker(context.Background(), container.ConfigRedisResources{
			"Cache": {Mode: "single", Address: []string{srv.Addr()}},
		})
		require.NoError(t, err)

		client, err := m.Get("cache")
		require.NoError(t, err)
		assert.NoError(t, client.Ping(context.Background()).Err())

		_, err = m.Get("other")
		assert.Error(t, err)

		assert.NoError(t, m.Close())
	})

	t.Run("unknown mode", func(t *testing.T) {
		m, err := container.NewRedisConnMaker(context.Background(), container.ConfigRedisResources{
			"cache": {Mode: "ring", Address: []string{srv.Addr()}},
		})
		assert.Nil(t, m)
		assert.Error(t, err)
	})

	t.Run("bad label", func(t *testing.T) {
		m, err := container.NewRedisConnMaker(context.Background(), container.ConfigRedisResources{
			"my-cache": {Mode: "single", Address: []string{srv.Addr()}},
		})
		assert.Nil(t, m)
		assert.Error(t, err)
	})
}
