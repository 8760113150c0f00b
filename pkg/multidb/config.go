package multidb

import "time"

type Driver string

func (d Driver) String() string {
	return string(d)
}

const (
	Postgres Driver = "postgres"
)

type GoSqlDb struct {
	Debug           bool          `yaml:"debug"`
	DSN             string        `yaml:"dsn"` // Data Source Name
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type DatabaseResource struct {
	Disable bool   `yaml:"disable"`
	Driver  Driver `yaml:"driver"`

	// per driver configuration
	Postgres GoSqlDb `yaml:"postgres"`
}

// DatabaseResources is keyed by the db label, which must be alphanumeric.
type DatabaseResources map[string]DatabaseResource
