package pnscred

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	PlatformGCM = "gcm"

	// DataContractGcm is the element name of GcmCredential in the data contract.
	DataContractGcm = "GcmCredential"

	PropGoogleAPIKey = "GoogleApiKey"
	PropGcmEndpoint  = "GcmEndpoint"
)

const (
	ProdAccessTokenServiceURL = "https://android.googleapis.com/gcm/send"

	// MockAccessTokenServiceURL is the local loopback endpoint, allowed only when the caller opts in.
	MockAccessTokenServiceURL = "http://localhost:8450/gcm/send"

	MockRunnerAccessTokenServiceURL      = "http://pushtestservice.cloudapp.net/gcm/send"
	MockIntAccessTokenServiceURL         = "http://pushtestservice4.cloudapp.net/gcm/send"
	MockPerformanceAccessTokenServiceURL = "http://pushperfnotificationserver.cloudapp.net/gcm/send"
	MockEnduranceAccessTokenServiceURL   = "http://pushstressnotificationserver.cloudapp.net/gcm/send"
	MockEnduranceAccessTokenServiceURL1  = "http://pushnotificationserver.cloudapp.net/gcm/send"

	mockHostingDomain = "CLOUDAPP.NET"
)

var gcmAllowedEndpoints = []string{
	ProdAccessTokenServiceURL,
	MockRunnerAccessTokenServiceURL,
	MockIntAccessTokenServiceURL,
	MockPerformanceAccessTokenServiceURL,
	MockEnduranceAccessTokenServiceURL,
	MockEnduranceAccessTokenServiceURL1,
}

// GcmCredential is the Google Cloud Messaging credential.
// The zero value is an empty credential.
type GcmCredential struct {
	googleAPIKey *string
	gcmEndpoint  *string

	// extra holds properties with unknown names, only filled when decoding.
	extra []Property
}

var _ Credential = (*GcmCredential)(nil)

// NewGcmCredential sets the API key without validating it.
func NewGcmCredential(googleAPIKey string) *GcmCredential {
	c := &GcmCredential{}
	c.SetGoogleAPIKey(googleAPIKey)
	return c
}

func (c *GcmCredential) pnsCredential() {}

func (c *GcmCredential) AppPlatform() string {
	return PlatformGCM
}

func (c *GcmCredential) GoogleAPIKey() string {
	if c == nil || c.googleAPIKey == nil {
		return ""
	}

	return *c.googleAPIKey
}

func (c *GcmCredential) SetGoogleAPIKey(v string) {
	c.googleAPIKey = &v
}

// GcmEndpoint returns the production endpoint when none is stored.
func (c *GcmCredential) GcmEndpoint() string {
	if c == nil || c.gcmEndpoint == nil {
		return ProdAccessTokenServiceURL
	}

	return *c.gcmEndpoint
}

// SetGcmEndpoint stores v verbatim, it is checked by Validate.
func (c *GcmCredential) SetGcmEndpoint(v string) {
	c.gcmEndpoint = &v
}

func (c *GcmCredential) Properties() []Property {
	if c == nil {
		return nil
	}

	props := make([]Property, 0, 2+len(c.extra))
	if c.googleAPIKey != nil {
		props = append(props, Property{Name: PropGoogleAPIKey, Value: *c.googleAPIKey})
	}

	if c.gcmEndpoint != nil {
		props = append(props, Property{Name: PropGcmEndpoint, Value: *c.gcmEndpoint})
	}

	return append(props, c.extra...)
}

// Validate checks the property set and the endpoint allow-list.
// The local mock endpoint is accepted only when allowLocalMockPns is true.
func (c *GcmCredential) Validate(allowLocalMockPns bool) error {
	if c == nil {
		return ErrGcmRequiredProperties
	}

	count := len(c.Properties())
	if count > 2 {
		return ErrGcmRequiredProperties
	}

	if count < 1 || strings.TrimSpace(c.GoogleAPIKey()) == "" {
		return ErrGoogleAPIKeyNotSpecified
	}

	if count == 2 && (c.gcmEndpoint == nil || *c.gcmEndpoint == "") {
		return ErrGcmEndpointNotSpecified
	}

	endpoint := c.GcmEndpoint()
	if !isAbsoluteURL(endpoint) || !isAllowedGcmEndpoint(endpoint, allowLocalMockPns) {
		return ErrInvalidGcmEndpoint
	}

	return nil
}

// Equal compares the API key only, the endpoint is not part of the identity.
func (c *GcmCredential) Equal(other Credential) bool {
	o, ok := other.(*GcmCredential)
	if !ok || o == nil || c == nil {
		return false
	}

	if c.googleAPIKey == nil || o.googleAPIKey == nil {
		return c.googleAPIKey == nil && o.googleAPIKey == nil
	}

	return *c.googleAPIKey == *o.googleAPIKey
}

// Hash is derived from the API key. A blank key falls back to the identity of c,
// so two blank credentials that are Equal may hash differently.
func (c *GcmCredential) Hash() uint64 {
	key := c.GoogleAPIKey()
	if strings.TrimSpace(key) == "" {
		return xxhash.Sum64String(fmt.Sprintf("%p", c))
	}

	return xxhash.Sum64String(key)
}

func (c *GcmCredential) String() string {
	return fmt.Sprintf("GcmCredential{GoogleApiKey: %s, GcmEndpoint: %s}", maskKey(c.GoogleAPIKey()), c.GcmEndpoint())
}

// IsMockGcm reports whether endpoint is hosted on the shared test domain.
func IsMockGcm(endpoint string) bool {
	return strings.Contains(strings.ToUpper(endpoint), mockHostingDomain)
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	return u.IsAbs() && u.Host != ""
}

func isAllowedGcmEndpoint(endpoint string, allowLocalMockPns bool) bool {
	for _, allowed := range gcmAllowedEndpoints {
		if strings.EqualFold(endpoint, allowed) {
			return true
		}
	}

	return allowLocalMockPns && strings.EqualFold(endpoint, MockAccessTokenServiceURL)
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}

	return key[:4] + strings.Repeat("*", len(key)-4)
}
