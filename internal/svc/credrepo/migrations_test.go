package credrepo_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/pnscred/internal/svc/credrepo"
)

func TestMigrations(t *testing.T) {
	ctx := context.Background()
	migs := credrepo.Migrations()
	assert.Len(t, migs, 2)

	prev := ""
	for _, m := range migs {
		assert.Greater(t, m.ID(ctx), prev)
		prev = m.ID(ctx)

		up, err := m.Up(ctx)
		assert.NoError(t, err)
		assert.True(t, strings.Contains(up, "pns_credentials"))

		down, err := m.Down(ctx)
		assert.NoError(t, err)
		assert.NotEmpty(t, down)
	}
}
