package pnscred

import (
	"errors"

	"github.com/yusufsyaifudin/pnscred/pkg/i18n"
)

// ErrInvalidDataContract is matched by every validation error returned from Credential.Validate.
var ErrInvalidDataContract = errors.New("invalid data contract")

var (
	ErrGcmRequiredProperties    = &ContractError{MessageKey: i18n.GcmRequiredProperties}
	ErrGoogleAPIKeyNotSpecified = &ContractError{MessageKey: i18n.GoogleAPIKeyNotSpecified, Property: PropGoogleAPIKey}
	ErrGcmEndpointNotSpecified  = &ContractError{MessageKey: i18n.GcmEndpointNotSpecified, Property: PropGcmEndpoint}
	ErrInvalidGcmEndpoint       = &ContractError{MessageKey: i18n.InvalidGcmEndpoint, Property: PropGcmEndpoint}

	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// ContractError is an invalid-configuration error.
// The message is resolved from the i18n catalog at the time Error is called.
type ContractError struct {
	MessageKey string

	// Property is the offending property name, empty when the error is about the property set.
	Property string
}

func (e *ContractError) Error() string {
	return i18n.T(e.MessageKey)
}

func (e *ContractError) Is(target error) bool {
	return target == ErrInvalidDataContract
}
