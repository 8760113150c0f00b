package container

import (
	"context"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/yusufsyaifudin/pnscred/internal/svc/credrepo"
	"github.com/yusufsyaifudin/pnscred/pkg/multidb"
	"go.uber.org/multierr"
)

// Repositories opens every configured resource once. Repos are selected by the labels in the config file.
type Repositories interface {
	io.Closer

	SqlDB(dbLabel string) (*sqlx.DB, error)
	Redis(redisLabel string) (RedisClient, error)
	CredentialRepo(dbLabel string) (credrepo.Repo, error)
}

// RepositoryImpl the real implementation of Repositories
type RepositoryImpl struct {
	dbResourceMap multidb.DatabaseResources
	dbSqlConn     multidb.MultiDB
	redisConn     *RedisConnMaker
}

var _ Repositories = (*RepositoryImpl)(nil)

// SetupRepositories returns the concrete type, so the caller can always Close it even when later setup fails.
func SetupRepositories(ctx context.Context, cfg Config) (*RepositoryImpl, error) {
	dbSqlConn, err := multidb.NewSqlDbConnMaker(multidb.SqlDbConnMakerConfig{Config: cfg.DatabaseResources})
	if err != nil {
		return nil, err
	}

	dep := &RepositoryImpl{
		dbResourceMap: cfg.DatabaseResources,
		dbSqlConn:     dbSqlConn,
	}

	if len(cfg.RedisResources) > 0 {
		dep.redisConn, err = NewRedisConnMaker(ctx, cfg.RedisResources)
		if err != nil {
			return dep, err
		}
	}

	return dep, nil
}

func (r *RepositoryImpl) SqlDB(dbLabel string) (*sqlx.DB, error) {
	repoConnInfo, ok := r.dbResourceMap[dbLabel]
	if !ok {
		return nil, fmt.Errorf("unknown database key %s", dbLabel)
	}

	return r.dbSqlConn.GetSqlx(repoConnInfo.Driver, dbLabel)
}

func (r *RepositoryImpl) Redis(redisLabel string) (RedisClient, error) {
	if r.redisConn == nil {
		return nil, fmt.Errorf("no redis resource is configured")
	}

	return r.redisConn.Get(redisLabel)
}

// CredentialRepo return credrepo.Repo and return error when connection is closed or nil.
func (r *RepositoryImpl) CredentialRepo(dbLabel string) (repo credrepo.Repo, err error) {
	repoConnInfo, ok := r.dbResourceMap[dbLabel]
	if !ok {
		err = fmt.Errorf("unknown database key %s on credential repo", dbLabel)
		return
	}

	switch repoConnInfo.Driver {
	case multidb.Postgres:
		var sqlConn *sqlx.DB
		sqlConn, err = r.dbSqlConn.GetSqlx(multidb.Postgres, dbLabel)
		if err != nil {
			return nil, err
		}

		repo, err = credrepo.NewPostgres(credrepo.PostgresConfig{
			Connection: sqlConn,
		})
		return

	default:
		err = fmt.Errorf("not supported db driver '%s' on label '%s'", repoConnInfo.Driver, dbLabel)
		return
	}
}

// Close will close all dependencies.
func (r *RepositoryImpl) Close() error {
	if r == nil {
		return nil
	}

	var err error
	if r.dbSqlConn != nil {
		if _err := r.dbSqlConn.Close(); _err != nil {
			err = multierr.Append(err, fmt.Errorf("close db error: %w", _err))
		}
	}

	if r.redisConn != nil {
		if _err := r.redisConn.Close(); _err != nil {
			err = multierr.Append(err, fmt.Errorf("close redis error: %w", _err))
		}
	}

	return err
}
