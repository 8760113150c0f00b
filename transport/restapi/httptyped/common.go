package httptyped

import (
	"strconv"
	"time"

	"github.com/yusufsyaifudin/pnscred/internal/svc/credsvc"
	"github.com/yusufsyaifudin/pnscred/pnscred"
)

// CredentialEntity is the credential shape of every HTTP response.
type CredentialEntity struct {
	ID           string             `json:"id"`
	ClientID     string             `json:"client_id"`
	Platform     string             `json:"platform"`
	Label        string             `json:"label"`
	Properties   []pnscred.Property `json:"properties"`
	MockEndpoint bool               `json:"mock_endpoint"`
	ETag         string             `json:"etag"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func CredentialEntityFromSvc(c credsvc.Credential) CredentialEntity {
	props := make([]pnscred.Property, 0)
	if c.Credential != nil {
		props = append(props, c.Credential.Properties()...)
	}

	return CredentialEntity{
		ID:           strconv.FormatInt(c.ID, 10),
		ClientID:     c.ClientID,
		Platform:     c.Platform,
		Label:        c.Label,
		Properties:   props,
		MockEndpoint: c.MockEndpoint,
		ETag:         c.ETag,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func CredentialEntitiesFromSvc(list []credsvc.Credential) []CredentialEntity {
	out := make([]CredentialEntity, 0, len(list))
	for _, c := range list {
		out = append(out, CredentialEntityFromSvc(c))
	}

	return out
}
