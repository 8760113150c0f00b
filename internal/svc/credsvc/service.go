package credsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yusufsyaifudin/pnscred/internal/svc/credrepo"
	"github.com/yusufsyaifudin/pnscred/pnscred"
)

var (
	ErrValidation = errors.New("validation error")
	ErrDuplicate  = errors.New("duplicate credential")
	ErrNotFound   = errors.New("credential not found")
)

type Service interface {
	Create(ctx context.Context, in InCreate) (out OutCreate, err error)
	Validate(ctx context.Context, in InValidate) (out OutValidate, err error)
	Get(ctx context.Context, in InGet) (out OutGet, err error)
	List(ctx context.Context, in InList) (out OutList, err error)
	Delete(ctx context.Context, in InDelete) (out OutDelete, err error)
	Examples(ctx context.Context) (out OutExamples)
}

// Format is the encoding of an incoming credential document.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// Credential is the registered credential as seen outside the service.
type Credential struct {
	ID           int64              `json:"id,string"`
	ClientID     string             `json:"client_id"`
	Platform     string             `json:"platform"`
	Label        string             `json:"label"`
	Credential   pnscred.Credential `json:"credential"`
	MockEndpoint bool               `json:"mock_endpoint"`
	ETag         string             `json:"etag"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type InCreate struct {
	ClientID string `validate:"required,max=255"`
	Platform string `validate:"required"`
	Label    string `validate:"required,max=255"`

	// Format defaults to json
	Format   Format `validate:"omitempty,oneof=json xml"`
	Document []byte `validate:"required"`
}

type OutCreate struct {
	Credential Credential
}

type InValidate struct {
	Platform string `validate:"required"`
	Format   Format `validate:"omitempty,oneof=json xml"`
	Document []byte `validate:"required"`
}

type OutValidate struct {
	Platform     string
	Credential   pnscred.Credential
	MockEndpoint bool
	ETag         string
}

type InGet struct {
	ClientID string `validate:"required"`
	Platform string `validate:"required"`
	Label    string `validate:"required"`
}

type OutGet struct {
	Credential Credential
}

type InList struct {
	ClientID string `validate:"required"`
	Platform string `validate:"-"`
}

type OutList struct {
	Credentials []Credential
}

type InDelete struct {
	ClientID string `validate:"required"`
	Platform string `validate:"required"`
	Label    string `validate:"required"`
}

type OutDelete struct {
	Credential Credential
}

type Example struct {
	Platform   string             `json:"platform"`
	Credential pnscred.Credential `json:"credential"`
}

type OutExamples struct {
	Items []Example
}

// -- func helper

// Decode parses doc into the platform credential without validating it.
func Decode(platform string, format Format, doc []byte) (pnscred.Credential, error) {
	switch format {
	case "", FormatJSON:
		return pnscred.DecodeJSON(platform, doc)
	case FormatXML:
		return pnscred.DecodeXML(platform, doc)
	default:
		return nil, fmt.Errorf("%w: unknown credential format '%s'", ErrValidation, format)
	}
}

// IsMockEndpoint reports whether cred points to a shared test endpoint.
func IsMockEndpoint(cred pnscred.Credential) bool {
	switch c := cred.(type) {
	case *pnscred.GcmCredential:
		return pnscred.IsMockGcm(c.GcmEndpoint())
	default:
		return false
	}
}

func ETag(cred pnscred.Credential) string {
	return fmt.Sprintf("%016x", cred.Hash())
}

func FromRepo(e credrepo.Credential) (o Credential, err error) {
	cred, err := pnscred.DecodeJSON(e.Platform, []byte(e.PropertiesJSON))
	if err != nil {
		err = fmt.Errorf("stored credential %d cannot be decoded: %w", e.ID, err)
		return
	}

	o = Credential{
		ID:           e.ID,
		ClientID:     e.ClientID,
		Platform:     e.Platform,
		Label:        e.Label,
		Credential:   cred,
		MockEndpoint: IsMockEndpoint(cred),
		ETag:         ETag(cred),
		CreatedAt:    time.UnixMicro(e.CreatedAt).UTC(),
		UpdatedAt:    time.UnixMicro(e.UpdatedAt).UTC(),
	}

	return
}
