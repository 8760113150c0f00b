package multidb_test

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/pnscred/pkg/multidb"
)

func TestNewSqlDbConnMaker(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		m, err := multidb.NewSqlDbConnMaker(multidb.SqlDbConnMakerConfig{})
		assert.Nil(t, m)
		assert.Error(t, err)
	})

	t.Run("bad label", func(t *testing.T) {
		m, err := multidb.NewSqlDbConnMaker(multidb.SqlDbConnMakerConfig{
			Config: multidb.DatabaseResources{
				"main-db": {Driver: multidb.Postgres},
			},
		})
		assert.Nil(t, m)
		assert.Error(t, err)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		m, err := multidb.NewSqlDbConnMaker(multidb.SqlDbConnMakerConfig{
			Config: multidb.DatabaseResources{
				"main": {Driver: "mysql"},
			},
		})
		assert.Nil(t, m)
		assert.Error(t, err)
	})

	t.Run("disabled and lazy open", func(t *testing.T) {
		m, err := multidb.NewSqlDbConnMaker(multidb.SqlDbConnMakerConfig{
			Config: multidb.DatabaseResources{
				"main": {
					Driver:   multidb.Postgres,
					Postgres: multidb.GoSqlDb{DSN: "postgres://localhost:5432/pnscred?sslmode=disable", MaxOpenConns: 2},
				},
				"Replica": {Disable: true, Driver: multidb.Postgres},
			},
		})
		require.NoError(t, err)
		defer m.Close()

		db, err := m.GetSqlx(multidb.Postgres, "MAIN")
		assert.NoError(t, err)
		assert.NotNil(t, db)

		_, err = m.GetSqlx(multidb.Postgres, "replica")
		assert.Error(t, err)

		_, err = m.GetSqlx("mysql", "main")
		assert.Error(t, err)

		_, err = m.GetSqlx(multidb.Postgres, "unknown")
		assert.Error(t, err)
	})
}

func TestSqlDbConnMaker_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectClose().WillReturnError(errors.New("boom"))

	m := multidb.NewSqlDbConnMakerFrom(map[string]*sqlx.DB{
		"main": sqlx.NewDb(db, "postgres"),
	})

	err = m.Close()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "(main)")
	assert.NoError(t, mock.ExpectationsWereMet())
}
