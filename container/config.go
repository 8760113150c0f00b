package container

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/yusufsyaifudin/pnscred/pkg/multidb"
	"github.com/yusufsyaifudin/pnscred/pkg/validator"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "config.yml"

type ConfigApp struct {
	Name    string `yaml:"name" validate:"required"`
	Version string `yaml:"version" validate:"required"`
	Env     string `yaml:"env" validate:"required"`

	// Locale of credential validation messages, en or id
	Locale string `yaml:"locale" validate:"omitempty,oneof=en id"`
}

// ConfigHTTPServer struct for HTTP ConfigTransport configuration
type ConfigHTTPServer struct {
	Port int `yaml:"port" validate:"required,min=1,max=65535"`
}

type ConfigTransport struct {
	HTTP ConfigHTTPServer `yaml:"http"`
}

type ConfigTracing struct {
	// JaegerEndpoint is the collector url, tracing is disabled when empty
	JaegerEndpoint string `yaml:"jaegerEndpoint" validate:"omitempty,url"`
}

type ConfigRedis struct {
	Mode       string   `yaml:"mode" validate:"required,oneof=single sentinel cluster"`
	Address    []string `yaml:"address" validate:"required,min=1"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	MasterName string   `yaml:"masterName"`
}

type ConfigRedisResources map[string]ConfigRedis

type ConfigCredentialCache struct {
	Enable     bool          `yaml:"enable"`
	Driver     string        `yaml:"driver" validate:"required_if=Enable true,omitempty,oneof=memory redis"`
	RedisLabel string        `yaml:"redisLabel" validate:"required_if=Driver redis"`
	Expiry     time.Duration `yaml:"expiry" validate:"required_if=Enable true"`
	PrefixKey  string        `yaml:"prefixKey" validate:"required_if=Enable true,omitempty,alphanum"`
	MaxBytes   int           `yaml:"maxBytes" validate:"min=0"`
}

type ConfigServiceCredential struct {
	DBLabel           string                `yaml:"dbLabel" validate:"required"`
	AllowLocalMockPns bool                  `yaml:"allowLocalMockPns"`
	Cache             ConfigCredentialCache `yaml:"cache"`
}

type ConfigServices struct {
	Credential ConfigServiceCredential `yaml:"credential"`
}

// Config contains application config
type Config struct {
	App               ConfigApp                 `yaml:"app"`
	Transport         ConfigTransport           `yaml:"transport"`
	Tracing           ConfigTracing             `yaml:"tracing"`
	DatabaseResources multidb.DatabaseResources `yaml:"databaseResources" validate:"required"`
	RedisResources    ConfigRedisResources      `yaml:"redisResources"`
	Services          ConfigServices            `yaml:"services"`
}

// LoadConfig reads the YAML file at path, unknown fields are ignored.
func LoadConfig(path string) (cfg Config, err error) {
	if path == "" {
		path = DefaultConfigFile
	}

	fileContent, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("error read file config %s: %w", path, err)
		return
	}

	dec := yaml.NewDecoder(bytes.NewReader(fileContent))
	dec.KnownFields(false)
	err = dec.Decode(&cfg)
	if err != nil {
		err = fmt.Errorf("error decode config %s: %w", path, err)
		return
	}

	if cfg.App.Locale == "" {
		cfg.App.Locale = "en"
	}

	err = validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("invalid config %s: %w", path, err)
		return
	}

	if _, ok := cfg.DatabaseResources[cfg.Services.Credential.DBLabel]; !ok {
		err = fmt.Errorf("credential dbLabel '%s' is not in databaseResources", cfg.Services.Credential.DBLabel)
		return
	}

	cache := cfg.Services.Credential.Cache
	if cache.Enable && cache.Driver == "redis" {
		if _, ok := cfg.RedisResources[cache.RedisLabel]; !ok {
			err = fmt.Errorf("credential cache redisLabel '%s' is not in redisResources", cache.RedisLabel)
			return
		}
	}

	return
}
