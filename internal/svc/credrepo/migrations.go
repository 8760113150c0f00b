package credrepo

import "github.com/yusufsyaifudin/pnscred/pkg/migration"

const MigrationTable = "pns_credentials_migrations"

// Migrations returns the pns_credentials schema, ordered by id.
func Migrations() []migration.Migrate {
	return []migration.Migrate{
		migration.Static{
			Id: "1666137600_create_pns_credentials_table",
			UpSQL: `
CREATE TABLE IF NOT EXISTS pns_credentials (
	id BIGINT NOT NULL PRIMARY KEY,
	client_id VARCHAR(255) NOT NULL,
	platform VARCHAR(16) NOT NULL,
	label VARCHAR(255) NOT NULL,
	properties_json TEXT NOT NULL,
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL,
	deleted_at BIGINT NOT NULL DEFAULT 0
);`,
			DownSQL: `DROP TABLE IF EXISTS pns_credentials;`,
		},
		migration.Static{
			Id: "1666137601_create_pns_credentials_label_index",

			// one active label per client and platform, soft deleted rows are free to repeat
			UpSQL: `
CREATE UNIQUE INDEX IF NOT EXISTS pns_credentials_active_label_idx
	ON pns_credentials (client_id, platform, label) WHERE deleted_at = 0;`,
			DownSQL: `DROP INDEX IF EXISTS pns_credentials_active_label_idx;`,
		},
	}
}
