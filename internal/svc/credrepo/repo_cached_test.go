package credrepo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/pnscred/internal/svc/credrepo"
	"github.com/yusufsyaifudin/pnscred/pkg/cache"
)

// memRepo is an in memory Repo counting reads to the persistent store.
type memRepo struct {
	rows  map[string]credrepo.Credential
	reads int
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string]credrepo.Credential{}}
}

func memKey(clientID, platform, label string) string {
	return fmt.Sprintf("%s/%s/%s", clientID, platform, label)
}

func (m *memRepo) Insert(_ context.Context, in credrepo.InInsert) (out credrepo.OutInsert, err error) {
	k := memKey(in.Credential.ClientID, in.Credential.Platform, in.Credential.Label)
	if _, ok := m.rows[k]; ok {
		return out, credrepo.ErrDuplicate
	}

	m.rows[k] = in.Credential
	return credrepo.OutInsert{Credential: in.Credential}, nil
}

func (m *memRepo) GetByLabel(_ context.Context, in credrepo.InGetByLabel) (out credrepo.OutGetByLabel, err error) {
	m.reads++
	c, ok := m.rows[memKey(in.ClientID, in.Platform, in.Label)]
	if !ok {
		return out, credrepo.ErrNotFound
	}

	return credrepo.OutGetByLabel{Credential: c}, nil
}

func (m *memRepo) ListByClient(_ context.Context, in credrepo.InListByClient) (out credrepo.OutListByClient, err error) {
	out.Credentials = make([]credrepo.Credential, 0)
	for _, c := range m.rows {
		if c.ClientID == in.ClientID && (in.Platform == "" || c.Platform == in.Platform) {
			out.Credentials = append(out.Credentials, c)
		}
	}

	return out, nil
}

func (m *memRepo) DelByLabel(_ context.Context, in credrepo.InDelByLabel) (out credrepo.OutDelByLabel, err error) {
	k := memKey(in.ClientID, in.Platform, in.Label)
	c, ok := m.rows[k]
	if !ok {
		return out, credrepo.ErrNotFound
	}

	delete(m.rows, k)
	c.DeletedAt = in.DeletedAt
	return credrepo.OutDelByLabel{Credential: c}, nil
}

func prepareCached(t *testing.T) (*credrepo.Cached, *memRepo) {
	mem := newMemRepo()
	inMem, err := cache.NewInMemory(0)
	require.NoError(t, err)

	repo, err := credrepo.NewCached(credrepo.CachedConfig{
		Persistent:     mem,
		CacheExpiry:    time.Minute,
		CachePrefixKey: "pnscred",
		Cache:          inMem,
	})
	require.NoError(t, err)

	return repo, mem
}

func TestNewCached(t *testing.T) {
	repo, err := credrepo.NewCached(credrepo.CachedConfig{CachePrefixKey: "not-alnum"})
	assert.Nil(t, repo)
	assert.ErrorIs(t, err, credrepo.ErrValidation)
}

func TestCached_GetByLabel(t *testing.T) {
	repo, mem := prepareCached(t)
	ctx := context.Background()
	c := newCred()

	_, err := repo.Insert(ctx, credrepo.InInsert{Credential: c})
	require.NoError(t, err)

	// served by the cache filled on insert
	out, err := repo.GetByLabel(ctx, credrepo.InGetByLabel{ClientID: c.ClientID, Platform: c.Platform, Label: c.Label})
	assert.NoError(t, err)
	assert.Equal(t, c, out.Credential)
	assert.Equal(t, 0, mem.reads)

	_, err = repo.GetByLabel(ctx, credrepo.InGetByLabel{ClientID: c.ClientID, Platform: c.Platform, Label: "other"})
	assert.ErrorIs(t, err, credrepo.ErrNotFound)
	assert.Equal(t, 1, mem.reads)
}

func TestCached_Insert_Duplicate(t *testing.T) {
	repo, _ := prepareCached(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, credrepo.InInsert{Credential: newCred()})
	require.NoError(t, err)

	_, err = repo.Insert(ctx, credrepo.InInsert{Credential: newCred()})
	assert.ErrorIs(t, err, credrepo.ErrDuplicate)
}

func TestCached_DelByLabel(t *testing.T) {
	repo, mem := prepareCached(t)
	ctx := context.Background()
	c := newCred()

	_, err := repo.Insert(ctx, credrepo.InInsert{Credential: c})
	require.NoError(t, err)

	_, err = repo.DelByLabel(ctx, credrepo.InDelByLabel{ClientID: c.ClientID, Platform: c.Platform, Label: c.Label, DeletedAt: 1})
	require.NoError(t, err)

	// cache entry is gone, so the read goes to the store and misses
	_, err = repo.GetByLabel(ctx, credrepo.InGetByLabel{ClientID: c.ClientID, Platform: c.Platform, Label: c.Label})
	assert.ErrorIs(t, err, credrepo.ErrNotFound)
	assert.Equal(t, 1, mem.reads)

	out, err := repo.ListByClient(ctx, credrepo.InListByClient{ClientID: c.ClientID})
	assert.NoError(t, err)
	assert.Empty(t, out.Credentials)
}
