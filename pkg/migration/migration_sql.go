package migration

import (
	"context"
	"database/sql"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/yusufsyaifudin/pnscred/pkg/tracer"
	"github.com/yusufsyaifudin/pnscred/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

type SQLImmigrationConfig struct {
	Dialect        string    `validate:"required,oneof=postgres"`
	DB             *sql.DB   `validate:"required"`
	MigrationTable string    `validate:"required"`
	Migrations     []Migrate `validate:"required,min=1"`
}

type SQLImmigration struct {
	config SQLImmigrationConfig
	set    migrate.MigrationSet
	source *migrate.MemoryMigrationSource
}

var _ Immigration = (*SQLImmigration)(nil)

func NewSQLImmigration(ctx context.Context, config SQLImmigrationConfig) (*SQLImmigration, error) {
	err := validator.Validate(config)
	if err != nil {
		return nil, fmt.Errorf("migration config: %w", err)
	}

	seen := map[string]struct{}{}
	mig := make([]*migrate.Migration, 0, len(config.Migrations))
	for _, m := range config.Migrations {
		id := m.ID(ctx)
		if _, exist := seen[id]; exist {
			return nil, fmt.Errorf("duplicate migration id %s", id)
		}

		seen[id] = struct{}{}

		sqlUp, err := m.Up(ctx)
		if err != nil {
			return nil, fmt.Errorf("migration %s up: %w", id, err)
		}

		sqlDown, err := m.Down(ctx)
		if err != nil {
			return nil, fmt.Errorf("migration %s down: %w", id, err)
		}

		mig = append(mig, &migrate.Migration{
			Id:   id,
			Up:   []string{sqlUp},
			Down: []string{sqlDown},
		})
	}

	return &SQLImmigration{
		config: config,
		set:    migrate.MigrationSet{TableName: config.MigrationTable},
		source: &migrate.MemoryMigrationSource{Migrations: mig},
	}, nil
}

// Migrations returns the sorted migration list as sql-migrate sees it.
func (p *SQLImmigration) Migrations() ([]*migrate.Migration, error) {
	return p.source.FindMigrations()
}

func (p *SQLImmigration) Up(ctx context.Context) (applied int, err error) {
	ctx, span := tracer.StartSpan(ctx, "migration.Up")
	defer span.End()

	applied, err = p.set.Exec(p.config.DB, p.config.Dialect, p.source, migrate.Up)
	if err != nil {
		return applied, fmt.Errorf("migrate up: %w", err)
	}

	ylog.Info(ctx, "migration up done", ylog.KV("applied", applied), ylog.KV("table", p.config.MigrationTable))
	return applied, nil
}

func (p *SQLImmigration) Down(ctx context.Context, max int) (applied int, err error) {
	ctx, span := tracer.StartSpan(ctx, "migration.Down")
	defer span.End()

	if max < 0 {
		max = 0
	}

	applied, err = p.set.ExecMax(p.config.DB, p.config.Dialect, p.source, migrate.Down, max)
	if err != nil {
		return applied, fmt.Errorf("migrate down: %w", err)
	}

	ylog.Info(ctx, "migration down done", ylog.KV("applied", applied), ylog.KV("table", p.config.MigrationTable))
	return applied, nil
}

func (p *SQLImmigration) Plan(ctx context.Context, direction Direction) (ids []string, err error) {
	_, span := tracer.StartSpan(ctx, "migration.Plan")
	defer span.End()

	dir := migrate.Up
	switch direction {
	case DirectionUp:
	case DirectionDown:
		dir = migrate.Down
	default:
		return nil, fmt.Errorf("unknown migration direction '%s'", direction)
	}

	planned, _, err := p.set.PlanMigration(p.config.DB, p.config.Dialect, p.source, dir, 0)
	if err != nil {
		return nil, fmt.Errorf("plan migration %s: %w", direction, err)
	}

	ids = make([]string, 0, len(planned))
	for _, m := range planned {
		ids = append(ids, m.Id)
	}

	return ids, nil
}
