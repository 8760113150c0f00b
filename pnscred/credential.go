// Package pnscred holds push notification service (PNS) credentials: the typed property set
// of each platform, validation before the credential is persisted or transmitted,
// and the data contract encoding used to embed credentials in hub configuration payloads.
package pnscred

import (
	"fmt"

	"github.com/yusufsyaifudin/pnscred/pkg/i18n"
)

// Namespace of the data contract every credential is serialized under.
const Namespace = "http://schemas.microsoft.com/netservices/2010/10/servicebus/connect"

// Credential is implemented only by the platform variants in this package.
type Credential interface {
	// AppPlatform tags outgoing registration requests with the target push notification service.
	AppPlatform() string

	// Validate must be called before the credential is used. It is side effect free.
	Validate(allowLocalMockPns bool) error

	// Properties return the stored properties in data contract order.
	Properties() []Property

	Equal(other Credential) bool
	Hash() uint64

	pnsCredential()
}

// Property is one name/value entry of a credential's data contract.
type Property struct {
	Name  string `json:"name" xml:"Name"`
	Value string `json:"value" xml:"Value"`
}

// Platforms return every platform tag that can be decoded.
func Platforms() []string {
	return []string{PlatformGCM}
}

// New returns an empty credential for the platform.
func New(platform string) (Credential, error) {
	switch platform {
	case PlatformGCM:
		return &GcmCredential{}, nil
	default:
		return nil, unsupported(platform)
	}
}

// Example return a credential that passes validation, used as documentation for API consumers.
func Example(platform string) (Credential, error) {
	switch platform {
	case PlatformGCM:
		return NewGcmCredential("AIzaSyExampleServerApiKey"), nil
	default:
		return nil, unsupported(platform)
	}
}

// IsSecretProperty reports whether the named property must not appear in logs.
func IsSecretProperty(name string) bool {
	return name == PropGoogleAPIKey
}

// MaskedProperties returns the properties of cred with secret values masked, safe to print.
func MaskedProperties(cred Credential) []Property {
	if cred == nil {
		return nil
	}

	props := cred.Properties()
	for i := range props {
		if IsSecretProperty(props[i].Name) {
			props[i].Value = maskKey(props[i].Value)
		}
	}

	return props
}

func unsupported(platform string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, i18n.T(i18n.UnsupportedPlatform, platform))
}
