package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/pnscred/pkg/i18n"
)

func TestT(t *testing.T) {
	assert.Equal(t, "GoogleApiKey is not specified in the GCM credential", i18n.T(i18n.GoogleAPIKeyNotSpecified))
	assert.Equal(t, "platform 'apns' is not supported", i18n.T(i18n.UnsupportedPlatform, "apns"))

	t.Run("missing key falls back to key", func(t *testing.T) {
		assert.Equal(t, "NoSuchMessage", i18n.T("NoSuchMessage"))
	})
}

func TestSetLocale(t *testing.T) {
	t.Cleanup(func() {
		i18n.SetLocale("en")
	})

	assert.True(t, i18n.SetLocale("id"))
	assert.Equal(t, "id", i18n.Locale())
	assert.Equal(t, "GoogleApiKey belum diisi pada kredensial GCM", i18n.T(i18n.GoogleAPIKeyNotSpecified))

	assert.False(t, i18n.SetLocale("xx-unknown"))
	assert.Equal(t, "id", i18n.Locale())
}
