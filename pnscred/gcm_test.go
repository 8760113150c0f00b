package pnscred_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/pnscred/pnscred"
)

func TestNewGcmCredential(t *testing.T) {
	for _, key := range []string{"abc", "AIzaSy-key", " spaced "} {
		t.Run(key, func(t *testing.T) {
			cred := pnscred.NewGcmCredential(key)
			assert.Equal(t, key, cred.GoogleAPIKey())
			assert.Equal(t, pnscred.ProdAccessTokenServiceURL, cred.GcmEndpoint())
			assert.Equal(t, "gcm", cred.AppPlatform())
			assert.Len(t, cred.Properties(), 1)
		})
	}

	t.Run("zero value", func(t *testing.T) {
		var cred pnscred.GcmCredential
		assert.Empty(t, cred.GoogleAPIKey())
		assert.Equal(t, pnscred.ProdAccessTokenServiceURL, cred.GcmEndpoint())
		assert.Empty(t, cred.Properties())
	})
}

func TestGcmCredential_SetGcmEndpoint(t *testing.T) {
	cred := pnscred.NewGcmCredential("abc")
	cred.SetGcmEndpoint("not even a url")

	assert.Equal(t, "not even a url", cred.GcmEndpoint())
	assert.Equal(t, []pnscred.Property{
		{Name: pnscred.PropGoogleAPIKey, Value: "abc"},
		{Name: pnscred.PropGcmEndpoint, Value: "not even a url"},
	}, cred.Properties())
}

func gcm(key, endpoint *string) *pnscred.GcmCredential {
	cred := &pnscred.GcmCredential{}
	if key != nil {
		cred.SetGoogleAPIKey(*key)
	}

	if endpoint != nil {
		cred.SetGcmEndpoint(*endpoint)
	}

	return cred
}

func str(s string) *string {
	return &s
}

func TestGcmCredential_Validate(t *testing.T) {
	testCases := []struct {
		Name       string
		Cred       *pnscred.GcmCredential
		AllowLocal bool
		Err        error
	}{
		{Name: "default endpoint", Cred: gcm(str("abc"), nil)},
		{Name: "default endpoint allow local", Cred: gcm(str("abc"), nil), AllowLocal: true},
		{Name: "explicit prod endpoint", Cred: gcm(str("abc"), str(pnscred.ProdAccessTokenServiceURL))},
		{Name: "prod endpoint upper case", Cred: gcm(str("abc"), str("HTTPS://ANDROID.GOOGLEAPIS.COM/GCM/SEND"))},
		{Name: "runner mock", Cred: gcm(str("abc"), str(pnscred.MockRunnerAccessTokenServiceURL))},
		{Name: "int mock", Cred: gcm(str("abc"), str(pnscred.MockIntAccessTokenServiceURL))},
		{Name: "performance mock", Cred: gcm(str("abc"), str(pnscred.MockPerformanceAccessTokenServiceURL))},
		{Name: "endurance mock", Cred: gcm(str("abc"), str(pnscred.MockEnduranceAccessTokenServiceURL))},
		{Name: "endurance mock 1", Cred: gcm(str("abc"), str(pnscred.MockEnduranceAccessTokenServiceURL1))},
		{Name: "local mock allowed", Cred: gcm(str("abc"), str(pnscred.MockAccessTokenServiceURL)), AllowLocal: true},

		{Name: "nil credential", Cred: nil, Err: pnscred.ErrGcmRequiredProperties},
		{Name: "no properties", Cred: gcm(nil, nil), Err: pnscred.ErrGoogleAPIKeyNotSpecified},
		{Name: "no properties allow local", Cred: gcm(nil, nil), AllowLocal: true, Err: pnscred.ErrGoogleAPIKeyNotSpecified},
		{Name: "blank key", Cred: gcm(str("   "), nil), Err: pnscred.ErrGoogleAPIKeyNotSpecified},
		{Name: "endpoint only", Cred: gcm(nil, str(pnscred.ProdAccessTokenServiceURL)), Err: pnscred.ErrGoogleAPIKeyNotSpecified},
		{Name: "blank endpoint", Cred: gcm(str("abc"), str("")), Err: pnscred.ErrGcmEndpointNotSpecified},
		{Name: "local mock not allowed", Cred: gcm(str("abc"), str(pnscred.MockAccessTokenServiceURL)), Err: pnscred.ErrInvalidGcmEndpoint},
		{Name: "unknown host", Cred: gcm(str("abc"), str("http://evil.example.com")), Err: pnscred.ErrInvalidGcmEndpoint},
		{Name: "unknown host allow local", Cred: gcm(str("abc"), str("http://evil.example.com")), AllowLocal: true, Err: pnscred.ErrInvalidGcmEndpoint},
		{Name: "relative url", Cred: gcm(str("abc"), str("/gcm/send")), AllowLocal: true, Err: pnscred.ErrInvalidGcmEndpoint},
		{Name: "whitespace endpoint", Cred: gcm(str("abc"), str(" ")), Err: pnscred.ErrInvalidGcmEndpoint},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			err := testCase.Cred.Validate(testCase.AllowLocal)
			if testCase.Err == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, testCase.Err)
			assert.ErrorIs(t, err, pnscred.ErrInvalidDataContract)
		})
	}
}

func TestGcmCredential_Validate_TooManyProperties(t *testing.T) {
	cred, err := pnscred.DecodeJSON(pnscred.PlatformGCM, []byte(`{"GoogleApiKey":"abc","GcmEndpoint":"https://android.googleapis.com/gcm/send","Extra":"x"}`))
	assert.NoError(t, err)
	assert.Len(t, cred.Properties(), 3)

	err = cred.Validate(true)
	assert.ErrorIs(t, err, pnscred.ErrGcmRequiredProperties)
	assert.ErrorIs(t, err, pnscred.ErrInvalidDataContract)
}

func TestGcmCredential_Validate_Rerunnable(t *testing.T) {
	cred := gcm(str("abc"), str("http://evil.example.com"))
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cred.Validate(false), pnscred.ErrInvalidGcmEndpoint)
	}

	assert.Equal(t, "http://evil.example.com", cred.GcmEndpoint())
	assert.Len(t, cred.Properties(), 2)
}

func TestGcmCredential_Validate_ErrorMessageNamesProperty(t *testing.T) {
	err := gcm(nil, nil).Validate(false)
	assert.Contains(t, err.Error(), pnscred.PropGoogleAPIKey)

	var contractErr *pnscred.ContractError
	assert.True(t, errors.As(err, &contractErr))
	assert.Equal(t, pnscred.PropGoogleAPIKey, contractErr.Property)

	err = gcm(str("abc"), str("")).Validate(false)
	assert.Contains(t, err.Error(), pnscred.PropGcmEndpoint)

	err = gcm(str("abc"), str("ftp://x")).Validate(false)
	assert.Contains(t, err.Error(), pnscred.PropGcmEndpoint)
}

func TestGcmCredential_Equal(t *testing.T) {
	a := gcm(str("abc"), nil)
	b := gcm(str("abc"), str(pnscred.MockRunnerAccessTokenServiceURL))

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.Equal(t, a.Hash(), b.Hash())

	t.Run("case sensitive", func(t *testing.T) {
		assert.False(t, a.Equal(gcm(str("ABC"), nil)))
	})

	t.Run("nil and unset", func(t *testing.T) {
		assert.False(t, a.Equal(nil))
		assert.False(t, a.Equal((*pnscred.GcmCredential)(nil)))
		assert.True(t, gcm(nil, nil).Equal(gcm(nil, str("x"))))
		assert.False(t, gcm(nil, nil).Equal(gcm(str(""), nil)))
	})
}

func TestGcmCredential_Hash_BlankKeyUsesIdentity(t *testing.T) {
	a := gcm(str(" "), nil)
	b := gcm(str(" "), nil)

	// equal by key, but hashed by identity
	assert.True(t, a.Equal(b))
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.Equal(t, a.Hash(), a.Hash())
}

func TestIsMockGcm(t *testing.T) {
	testCases := []struct {
		Endpoint string
		Mock     bool
	}{
		{Endpoint: pnscred.MockRunnerAccessTokenServiceURL, Mock: true},
		{Endpoint: "HTTP://PUSHTESTSERVICE.CLOUDAPP.NET/GCM/SEND", Mock: true},
		{Endpoint: pnscred.MockEnduranceAccessTokenServiceURL1, Mock: true},
		{Endpoint: pnscred.ProdAccessTokenServiceURL, Mock: false},
		{Endpoint: pnscred.MockAccessTokenServiceURL, Mock: false},
		{Endpoint: "", Mock: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Endpoint, func(t *testing.T) {
			assert.Equal(t, testCase.Mock, pnscred.IsMockGcm(testCase.Endpoint))
		})
	}
}

func TestGcmCredential_String(t *testing.T) {
	cred := pnscred.NewGcmCredential("AIzaSySecret")
	assert.NotContains(t, cred.String(), "Secret")
	assert.Contains(t, cred.String(), pnscred.ProdAccessTokenServiceURL)
}

func TestIsSecretProperty(t *testing.T) {
	assert.True(t, pnscred.IsSecretProperty(pnscred.PropGoogleAPIKey))
	assert.False(t, pnscred.IsSecretProperty(pnscred.PropGcmEndpoint))
}

func TestMaskedProperties(t *testing.T) {
	cred := pnscred.NewGcmCredential("AIzaSySecret")
	cred.SetGcmEndpoint(pnscred.ProdAccessTokenServiceURL)

	assert.Equal(t, []pnscred.Property{
		{Name: pnscred.PropGoogleAPIKey, Value: "AIza********"},
		{Name: pnscred.PropGcmEndpoint, Value: pnscred.ProdAccessTokenServiceURL},
	}, pnscred.MaskedProperties(cred))

	// the credential itself is untouched
	assert.Equal(t, "AIzaSySecret", cred.GoogleAPIKey())
	assert.Nil(t, pnscred.MaskedProperties(nil))
}
