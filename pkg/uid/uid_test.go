package uid_test

import (
	"testing"

	"github.com/sony/sonyflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/pnscred/pkg/uid"
)

func TestNewSonyflake(t *testing.T) {
	gen, err := uid.NewSonyflake()
	if err != nil {
		t.Skipf("no private ip address to derive machine id: %s", err)
	}

	prev := uint64(0)
	for i := 0; i < 10; i++ {
		id, err := gen.NextID()
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}

	parts := sonyflake.Decompose(prev)
	assert.Contains(t, parts, "machine-id")
}
