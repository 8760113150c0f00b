package credrepo

import (
	"context"
	"errors"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("credential not found")
	ErrDuplicate  = errors.New("credential label already exist")
)

// Repo stores push notification credentials per client, platform and label.
type Repo interface {
	Insert(ctx context.Context, in InInsert) (out OutInsert, err error)
	GetByLabel(ctx context.Context, in InGetByLabel) (out OutGetByLabel, err error)
	ListByClient(ctx context.Context, in InListByClient) (out OutListByClient, err error)
	DelByLabel(ctx context.Context, in InDelByLabel) (out OutDelByLabel, err error)
}

// Credential resembles the table structure. Json tag is used for caching.
type Credential struct {
	ID             int64  `json:"id" db:"id" validate:"required"`
	ClientID       string `json:"client_id" db:"client_id" validate:"required"`
	Platform       string `json:"platform" db:"platform" validate:"required"`
	Label          string `json:"label" db:"label" validate:"required"`
	PropertiesJSON string `json:"properties_json" db:"properties_json" validate:"required,json"`

	// Timestamp using integer as unix microsecond in UTC
	CreatedAt int64 `json:"created_at" db:"created_at" validate:"required"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at" validate:"required"`
	DeletedAt int64 `json:"deleted_at" db:"deleted_at" validate:"-"`
}

type InInsert struct {
	Credential Credential `validate:"required"`
}

type OutInsert struct {
	Credential Credential
}

type InGetByLabel struct {
	ClientID string `validate:"required"`
	Platform string `validate:"required"`
	Label    string `validate:"required"`
}

type OutGetByLabel struct {
	Credential Credential
}

type InListByClient struct {
	ClientID string `validate:"required"`
	Platform string `validate:"-"` // empty means every platform
}

type OutListByClient struct {
	Credentials []Credential
}

type InDelByLabel struct {
	ClientID  string `validate:"required"`
	Platform  string `validate:"required"`
	Label     string `validate:"required"`
	DeletedAt int64  `validate:"required"`
}

type OutDelByLabel struct {
	Credential Credential
}
