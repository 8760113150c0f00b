package credrepo_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/pnscred/internal/svc/credrepo"
)

var columns = []string{"id", "client_id", "platform", "label", "properties_json", "created_at", "updated_at", "deleted_at"}

func newCred() credrepo.Credential {
	return credrepo.Credential{
		ID:             1,
		ClientID:       "client",
		Platform:       "gcm",
		Label:          "default",
		PropertiesJSON: `{"GoogleApiKey":"abc"}`,
		CreatedAt:      1666137600000000,
		UpdatedAt:      1666137600000000,
	}
}

func row(c credrepo.Credential) *sqlmock.Rows {
	return sqlmock.NewRows(columns).AddRow(c.ID, c.ClientID, c.Platform, c.Label, c.PropertiesJSON, c.CreatedAt, c.UpdatedAt, c.DeletedAt)
}

func prepareRepo(t *testing.T) (*credrepo.Postgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo, err := credrepo.NewPostgres(credrepo.PostgresConfig{
		Connection: sqlx.NewDb(db, "postgres"),
	})
	require.NoError(t, err)

	return repo, mock
}

func TestNewPostgres(t *testing.T) {
	repo, err := credrepo.NewPostgres(credrepo.PostgresConfig{})
	assert.Nil(t, repo)
	assert.ErrorIs(t, err, credrepo.ErrValidation)
}

func TestPostgres_Insert(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := prepareRepo(t)
		c := newCred()

		mock.ExpectQuery(credrepo.SqlInsert).
			WithArgs(c.ID, c.ClientID, c.Platform, c.Label, c.PropertiesJSON, c.CreatedAt, c.UpdatedAt).
			WillReturnRows(row(c))

		out, err := repo.Insert(context.Background(), credrepo.InInsert{Credential: c})
		assert.NoError(t, err)
		assert.Equal(t, c, out.Credential)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate label", func(t *testing.T) {
		repo, mock := prepareRepo(t)
		c := newCred()

		mock.ExpectQuery(credrepo.SqlInsert).WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.Insert(context.Background(), credrepo.InInsert{Credential: c})
		assert.ErrorIs(t, err, credrepo.ErrDuplicate)
	})

	t.Run("invalid properties json", func(t *testing.T) {
		repo, _ := prepareRepo(t)
		c := newCred()
		c.PropertiesJSON = "not json"

		_, err := repo.Insert(context.Background(), credrepo.InInsert{Credential: c})
		assert.ErrorIs(t, err, credrepo.ErrValidation)
	})
}

func TestPostgres_GetByLabel(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := prepareRepo(t)
		c := newCred()

		mock.ExpectQuery(credrepo.SqlGetByLabel).WithArgs("client", "gcm", "default").WillReturnRows(row(c))

		out, err := repo.GetByLabel(context.Background(), credrepo.InGetByLabel{ClientID: "client", Platform: "gcm", Label: "default"})
		assert.NoError(t, err)
		assert.Equal(t, c, out.Credential)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := prepareRepo(t)

		mock.ExpectQuery(credrepo.SqlGetByLabel).WithArgs("client", "gcm", "x").WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.GetByLabel(context.Background(), credrepo.InGetByLabel{ClientID: "client", Platform: "gcm", Label: "x"})
		assert.ErrorIs(t, err, credrepo.ErrNotFound)
	})

	t.Run("missing label", func(t *testing.T) {
		repo, _ := prepareRepo(t)

		_, err := repo.GetByLabel(context.Background(), credrepo.InGetByLabel{ClientID: "client", Platform: "gcm"})
		assert.ErrorIs(t, err, credrepo.ErrValidation)
	})
}

func TestPostgres_ListByClient(t *testing.T) {
	t.Run("every platform", func(t *testing.T) {
		repo, mock := prepareRepo(t)
		c := newCred()

		mock.ExpectQuery(credrepo.SqlListByClient).WithArgs("client").WillReturnRows(row(c))

		out, err := repo.ListByClient(context.Background(), credrepo.InListByClient{ClientID: "client"})
		assert.NoError(t, err)
		assert.Equal(t, []credrepo.Credential{c}, out.Credentials)
	})

	t.Run("by platform, empty", func(t *testing.T) {
		repo, mock := prepareRepo(t)

		mock.ExpectQuery(credrepo.SqlListByClientPlatform).WithArgs("client", "gcm").WillReturnRows(sqlmock.NewRows(columns))

		out, err := repo.ListByClient(context.Background(), credrepo.InListByClient{ClientID: "client", Platform: "gcm"})
		assert.NoError(t, err)
		assert.NotNil(t, out.Credentials)
		assert.Empty(t, out.Credentials)
	})
}

func TestPostgres_DelByLabel(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock := prepareRepo(t)
		c := newCred()
		c.DeletedAt = 1666137700000000
		c.UpdatedAt = c.DeletedAt

		mock.ExpectQuery(credrepo.SqlSoftDelete).WithArgs("client", "gcm", "default", c.DeletedAt).WillReturnRows(row(c))

		out, err := repo.DelByLabel(context.Background(), credrepo.InDelByLabel{
			ClientID: "client", Platform: "gcm", Label: "default", DeletedAt: c.DeletedAt,
		})
		assert.NoError(t, err)
		assert.Equal(t, c.DeletedAt, out.Credential.DeletedAt)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := prepareRepo(t)

		mock.ExpectQuery(credrepo.SqlSoftDelete).WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.DelByLabel(context.Background(), credrepo.InDelByLabel{
			ClientID: "client", Platform: "gcm", Label: "default", DeletedAt: 1,
		})
		assert.ErrorIs(t, err, credrepo.ErrNotFound)
	})
}
