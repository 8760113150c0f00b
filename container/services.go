package container

import (
	"fmt"

	"github.com/yusufsyaifudin/pnscred/internal/svc/credrepo"
	"github.com/yusufsyaifudin/pnscred/internal/svc/credsvc"
	"github.com/yusufsyaifudin/pnscred/pkg/cache"
	"github.com/yusufsyaifudin/pnscred/pkg/uid"
)

type Services interface {
	UIDGen() uid.UID
	Credential() credsvc.Service
}

type ServicesImpl struct {
	uidGen uid.UID
	cred   credsvc.Service
}

var _ Services = (*ServicesImpl)(nil)

func SetupServices(svcCfg ConfigServices, repos Repositories) (svc *ServicesImpl, err error) {
	if repos == nil {
		err = fmt.Errorf("nil repositories on services preparation")
		return
	}

	uidGen, err := uid.NewSonyflake()
	if err != nil {
		err = fmt.Errorf("uid generator: %w", err)
		return
	}

	credCfg := svcCfg.Credential
	credRepo, err := repos.CredentialRepo(credCfg.DBLabel)
	if err != nil {
		err = fmt.Errorf("services cannot get credential repo: %w", err)
		return
	}

	credRepo, err = withCache(credCfg.Cache, credRepo, repos)
	if err != nil {
		err = fmt.Errorf("services cannot prepare credential cache: %w", err)
		return
	}

	credSvc, err := credsvc.New(credsvc.Config{
		UIDGen:            uidGen,
		CredRepo:          credRepo,
		AllowLocalMockPns: credCfg.AllowLocalMockPns,
	})
	if err != nil {
		err = fmt.Errorf("services cannot prepare credential service: %w", err)
		return
	}

	svc = &ServicesImpl{
		uidGen: uidGen,
		cred:   credSvc,
	}

	return svc, nil
}

func withCache(cfg ConfigCredentialCache, repo credrepo.Repo, repos Repositories) (credrepo.Repo, error) {
	if !cfg.Enable {
		return repo, nil
	}

	var c cache.Cache
	switch cfg.Driver {
	case "memory":
		inMem, err := cache.NewInMemory(cfg.MaxBytes)
		if err != nil {
			return nil, err
		}

		c = inMem

	case "redis":
		client, err := repos.Redis(cfg.RedisLabel)
		if err != nil {
			return nil, err
		}

		c, err = cache.NewRedis(cache.RedisConfig{DB: client})
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown cache driver '%s'", cfg.Driver)
	}

	return credrepo.NewCached(credrepo.CachedConfig{
		Persistent:     repo,
		CacheExpiry:    cfg.Expiry,
		CachePrefixKey: cfg.PrefixKey,
		Cache:          c,
	})
}

func (s *ServicesImpl) UIDGen() uid.UID {
	return s.uidGen
}

func (s *ServicesImpl) Credential() credsvc.Service {
	return s.cred
}
