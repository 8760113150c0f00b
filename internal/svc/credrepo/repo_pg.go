package credrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/yusufsyaifudin/pnscred/pkg/tracer"
	"github.com/yusufsyaifudin/pnscred/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	SqlInsert = `INSERT INTO pns_credentials (id, client_id, platform, label, properties_json, created_at, updated_at, deleted_at) VALUES ($1, $2, $3, $4, $5, $6, $7, 0) RETURNING *;`

	SqlGetByLabel = `SELECT * FROM pns_credentials WHERE client_id = $1 AND platform = $2 AND label = $3 AND deleted_at = 0 LIMIT 1;`

	SqlListByClient = `SELECT * FROM pns_credentials WHERE client_id = $1 AND deleted_at = 0 ORDER BY id ASC;`

	SqlListByClientPlatform = `SELECT * FROM pns_credentials WHERE client_id = $1 AND platform = $2 AND deleted_at = 0 ORDER BY id ASC;`

	SqlSoftDelete = `UPDATE pns_credentials SET deleted_at = $4, updated_at = $4 WHERE client_id = $1 AND platform = $2 AND label = $3 AND deleted_at = 0 RETURNING *;`
)

// pgUniqueViolation is the postgres error code of unique_violation
const pgUniqueViolation = "23505"

type PostgresConfig struct {
	Connection sqlx.QueryerContext `validate:"required"`
}

type Postgres struct {
	Config PostgresConfig
}

var _ Repo = (*Postgres)(nil)

func NewPostgres(cfg PostgresConfig) (repo *Postgres, err error) {
	err = validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	repo = &Postgres{
		Config: cfg,
	}

	return
}

func (p *Postgres) Insert(ctx context.Context, in InInsert) (out OutInsert, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "credrepo.Insert")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	c := in.Credential
	args := []interface{}{
		c.ID,
		c.ClientID,
		c.Platform,
		c.Label,
		c.PropertiesJSON,
		c.CreatedAt,
		c.UpdatedAt,
	}

	var inserted Credential
	err = sqlx.GetContext(ctx, p.Config.Connection, &inserted, SqlInsert, args...)
	if isUniqueViolation(err) {
		err = fmt.Errorf("%w: %s/%s/%s", ErrDuplicate, c.ClientID, c.Platform, c.Label)
		return
	}

	if err != nil {
		err = fmt.Errorf("insert db error: %w", err)
		return
	}

	out = OutInsert{
		Credential: inserted,
	}

	return
}

func (p *Postgres) GetByLabel(ctx context.Context, in InGetByLabel) (out OutGetByLabel, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "credrepo.GetByLabel")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	var cred Credential
	err = sqlx.GetContext(ctx, p.Config.Connection, &cred, SqlGetByLabel, in.ClientID, in.Platform, in.Label)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: %s/%s/%s", ErrNotFound, in.ClientID, in.Platform, in.Label)
		return
	}

	if err != nil {
		err = fmt.Errorf("cannot get credential by label: %w", err)
		return
	}

	out = OutGetByLabel{
		Credential: cred,
	}

	return
}

func (p *Postgres) ListByClient(ctx context.Context, in InListByClient) (out OutListByClient, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "credrepo.ListByClient")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	query, args := SqlListByClient, []interface{}{in.ClientID}
	if in.Platform != "" {
		query, args = SqlListByClientPlatform, append(args, in.Platform)
	}

	creds := make([]Credential, 0)
	err = sqlx.SelectContext(ctx, p.Config.Connection, &creds, query, args...)
	if err != nil {
		err = fmt.Errorf("cannot list credentials of client %s: %w", in.ClientID, err)
		return
	}

	out = OutListByClient{
		Credentials: creds,
	}

	return
}

func (p *Postgres) DelByLabel(ctx context.Context, in InDelByLabel) (out OutDelByLabel, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "credrepo.DelByLabel")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	var deleted Credential
	err = sqlx.GetContext(ctx, p.Config.Connection, &deleted, SqlSoftDelete, in.ClientID, in.Platform, in.Label, in.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: %s/%s/%s", ErrNotFound, in.ClientID, in.Platform, in.Label)
		return
	}

	if err != nil {
		err = fmt.Errorf("soft delete credential error: %w", err)
		return
	}

	out = OutDelByLabel{
		Credential: deleted,
	}

	return
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
