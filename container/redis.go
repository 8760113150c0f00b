package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/yusufsyaifudin/pnscred/pkg/multidb"
	"github.com/yusufsyaifudin/pnscred/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

// RedisClient is any redis topology: single, sentinel or cluster.
type RedisClient = redis.UniversalClient

// RedisConnMaker holds every configured redis connection keyed by label.
type RedisConnMaker struct {
	conf    ConfigRedisResources
	clients map[string]redis.UniversalClient
	closer  []multidb.Closer
}

func NewRedisConnMaker(ctx context.Context, conf ConfigRedisResources) (*RedisConnMaker, error) {
	instance := &RedisConnMaker{
		conf:    conf,
		clients: map[string]redis.UniversalClient{},
		closer:  make([]multidb.Closer, 0),
	}

	err := instance.connect(ctx)
	if err != nil {
		// close previous opened connection if error happen
		if _err := instance.Close(); _err != nil {
			err = multierr.Append(err, fmt.Errorf("close redis error: %w", _err))
		}

		return nil, err
	}

	return instance, nil
}

func (i *RedisConnMaker) connect(ctx context.Context) error {
	for key, connInfo := range i.conf {
		key = strings.TrimSpace(strings.ToLower(key))
		if err := validator.Var(key, "required,alphanum"); err != nil {
			err = fmt.Errorf("error connecting to redis key '%s': %w", key, err)
			return err
		}

		if err := validator.Validate(connInfo); err != nil {
			return fmt.Errorf("redis '%s' config: %w", key, err)
		}

		var redisClient redis.UniversalClient
		switch connInfo.Mode {
		case "single":
			redisClient = redis.NewClient(&redis.Options{
				Addr:     connInfo.Address[0],
				Username: connInfo.Username,
				Password: connInfo.Password,
				DB:       connInfo.DB,
			})

		case "sentinel":
			redisClient = redis.NewFailoverClient(&redis.FailoverOptions{
				SentinelAddrs: connInfo.Address,
				Username:      connInfo.Username,
				Password:      connInfo.Password,
				DB:            connInfo.DB,
				MasterName:    connInfo.MasterName,
			})

		case "cluster":
			// cluster mode is not support DB selection
			redisClient = redis.NewClusterClient(&redis.ClusterOptions{
				Addrs:    connInfo.Address,
				Username: connInfo.Username,
				Password: connInfo.Password,
			})

		default:
			return fmt.Errorf("unknown redis mode: %s", connInfo.Mode)
		}

		// register first, so a failed ping is still closed
		i.clients[key] = redisClient
		i.closer = append(i.closer, multidb.NewNamedCloser("redis "+key, redisClient))

		err := redisClient.Ping(ctx).Err()
		if err != nil {
			err = fmt.Errorf("error ping redis %s: %w", key, err)
			return err
		}

		ylog.Debug(ctx, fmt.Sprintf("redis: %s connected in %s mode", key, connInfo.Mode))
	}

	return nil
}

func (i *RedisConnMaker) Get(key string) (RedisClient, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	v, ok := i.clients[key]
	if !ok {
		return nil, fmt.Errorf("key %s is not found in any redis topology", key)
	}

	return v, nil
}

func (i *RedisConnMaker) Close() error {
	if i == nil {
		return nil
	}

	var err error
	for _, closer := range i.closer {
		if closer == nil {
			continue
		}

		err = multierr.Append(err, closer.Close())
	}

	return err
}
