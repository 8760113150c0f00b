package credrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yusufsyaifudin/pnscred/pkg/cache"
	"github.com/yusufsyaifudin/pnscred/pkg/tracer"
	"github.com/yusufsyaifudin/pnscred/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/trace"
)

type CachedConfig struct {
	Persistent     Repo          `validate:"required"`
	CacheExpiry    time.Duration `validate:"required"`
	CachePrefixKey string        `validate:"required,alphanum"`
	Cache          cache.Cache   `validate:"required"`
}

// Cached keeps single credentials by label in cache. Listing always reads the persistent store.
type Cached struct {
	Config CachedConfig
}

var _ Repo = (*Cached)(nil)

func NewCached(cfg CachedConfig) (*Cached, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	return &Cached{
		Config: cfg,
	}, nil
}

func (c *Cached) Insert(ctx context.Context, in InInsert) (out OutInsert, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "credrepo.Cached.Insert")
	defer span.End()

	cred := in.Credential
	existing, cacheErr := c.get(ctx, cred.ClientID, cred.Platform, cred.Label)
	if cacheErr == nil && existing.Label == cred.Label {
		err = fmt.Errorf("%w: %s/%s/%s", ErrDuplicate, cred.ClientID, cred.Platform, cred.Label)
		return
	}

	out, err = c.Config.Persistent.Insert(ctx, in)
	if err != nil {
		return
	}

	c.set(ctx, out.Credential)
	return
}

func (c *Cached) GetByLabel(ctx context.Context, in InGetByLabel) (out OutGetByLabel, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "credrepo.Cached.GetByLabel")
	defer span.End()

	cred, cacheErr := c.get(ctx, in.ClientID, in.Platform, in.Label)
	if cacheErr == nil && cred.Label == in.Label {
		out = OutGetByLabel{Credential: cred}
		return
	}

	if cacheErr != nil && !errors.Is(cacheErr, cache.ErrKeyNotExist) {
		ylog.Error(ctx, "get credential from cache error, continue to persistent store", ylog.KV("error", cacheErr))
	}

	out, err = c.Config.Persistent.GetByLabel(ctx, in)
	if err != nil {
		return
	}

	c.set(ctx, out.Credential)
	return
}

func (c *Cached) ListByClient(ctx context.Context, in InListByClient) (out OutListByClient, err error) {
	return c.Config.Persistent.ListByClient(ctx, in)
}

func (c *Cached) DelByLabel(ctx context.Context, in InDelByLabel) (out OutDelByLabel, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "credrepo.Cached.DelByLabel")
	defer span.End()

	out, err = c.Config.Persistent.DelByLabel(ctx, in)
	if err != nil {
		return
	}

	if _err := c.Config.Cache.Delete(ctx, c.key(in.ClientID, in.Platform, in.Label)); _err != nil {
		ylog.Error(ctx, "cannot invalidate credential cache", ylog.KV("error", _err))
	}

	return
}

// -- cache

func (c *Cached) key(clientID, platform, label string) string {
	return fmt.Sprintf("%s:%s:%s:%s", c.Config.CachePrefixKey, clientID, platform, label)
}

func (c *Cached) get(ctx context.Context, clientID, platform, label string) (Credential, error) {
	var cred Credential
	err := c.Config.Cache.GetAs(ctx, c.key(clientID, platform, label), &cred)
	if err != nil {
		return Credential{}, err
	}

	ylog.Debug(ctx, fmt.Sprintf("get credential %s/%s/%s from cache", clientID, platform, label))
	return cred, nil
}

func (c *Cached) set(ctx context.Context, cred Credential) {
	err := c.Config.Cache.SetExp(ctx, c.key(cred.ClientID, cred.Platform, cred.Label), cred, c.Config.CacheExpiry)
	if err != nil {
		ylog.Error(ctx, fmt.Sprintf("cannot cache credential %s/%s/%s", cred.ClientID, cred.Platform, cred.Label), ylog.KV("error", err))
	}
}
