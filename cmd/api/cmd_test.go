package api_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/pnscred/cmd/api"
)

func TestCmd_Run_MissingConfig(t *testing.T) {
	f, err := api.NewCmd("pnscred", "test")()
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "missing.yml")
	assert.Equal(t, api.ExitErr, f.Run([]string{"-c", file}))
	assert.Equal(t, api.ExitErr, f.Run([]string{"-unknown"}))
}
