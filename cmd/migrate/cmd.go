package migrate

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/pnscred/container"
	"github.com/yusufsyaifudin/pnscred/extd"
	"github.com/yusufsyaifudin/pnscred/internal/svc/credrepo"
	"github.com/yusufsyaifudin/pnscred/pkg/migration"
	"github.com/yusufsyaifudin/pnscred/pkg/multidb"
	"github.com/yusufsyaifudin/ylog"
)

const (
	ExitSuccess = 0
	ExitErr     = -1
)

type Cmd struct {
	flags      *flag.FlagSet
	configFile string
	direction  string
	max        int
	dryRun     bool
}

func NewCmd() func() (cli.Command, error) {
	return func() (cli.Command, error) {
		cmd := &Cmd{}
		err := cmd.init()
		return cmd, err
	}
}

var _ cli.Command = (*Cmd)(nil)
var _ cli.CommandFactory = NewCmd()

func (c *Cmd) init() error {
	c.flags = flag.NewFlagSet("migrate", flag.ContinueOnError)
	c.flags.StringVar(&c.configFile, "config", container.DefaultConfigFile,
		"Config file to load")
	c.flags.StringVar(&c.direction, "direction", string(migration.DirectionUp),
		"Migration direction: up or down")
	c.flags.IntVar(&c.max, "max", 0,
		"Maximum migrations to roll back on down, 0 means all")
	c.flags.BoolVar(&c.dryRun, "dry-run", false,
		"Print pending migration ids without running them")
	return nil
}

func (c *Cmd) Help() string {
	return `Usage: pnscred migrate [-config config.yml] [-direction up|down] [-max N] [-dry-run]

  Migrate the credential table on the database labelled by services.credential.dbLabel.`
}

func (c *Cmd) Synopsis() string {
	return `Migrate the credential database schema`
}

func (c *Cmd) Run(args []string) int {
	err := c.flags.Parse(args)
	if err != nil {
		log.Printf("error parsing config argument: %s\n", err)
		return ExitErr
	}

	direction := migration.Direction(strings.ToLower(strings.TrimSpace(c.direction)))
	if direction != migration.DirectionUp && direction != migration.DirectionDown {
		log.Printf("unknown migration direction %s\n", c.direction)
		return ExitErr
	}

	cfg, err := container.LoadConfig(c.configFile)
	if err != nil {
		log.Printf("error load config: %s\n", err)
		return ExitErr
	}

	ctx, err := extd.SetupLog(context.Background())
	if err != nil {
		log.Println(err)
		return ExitErr
	}

	if err = c.migrate(ctx, cfg, direction); err != nil {
		ylog.Error(ctx, "migration: failed", ylog.KV("error", err))
		return ExitErr
	}

	return ExitSuccess
}

func (c *Cmd) migrate(ctx context.Context, cfg container.Config, direction migration.Direction) (err error) {
	dbLabel := cfg.Services.Credential.DBLabel
	resource, ok := cfg.DatabaseResources[dbLabel]
	if !ok {
		err = fmt.Errorf("unknown database key %s", dbLabel)
		return
	}

	// only the credential database is opened, redis is not needed here
	dbConn, err := multidb.NewSqlDbConnMaker(multidb.SqlDbConnMakerConfig{
		Config: multidb.DatabaseResources{dbLabel: resource},
	})
	if err != nil {
		return
	}

	defer func() {
		if _err := dbConn.Close(); _err != nil {
			ylog.Error(ctx, "closing database: failed", ylog.KV("error", _err))
		}
	}()

	db, err := dbConn.GetSqlx(resource.Driver, dbLabel)
	if err != nil {
		return
	}

	mig, err := migration.NewSQLImmigration(ctx, migration.SQLImmigrationConfig{
		Dialect:        resource.Driver.String(),
		DB:             db.DB,
		MigrationTable: credrepo.MigrationTable,
		Migrations:     credrepo.Migrations(),
	})
	if err != nil {
		return
	}

	if c.dryRun {
		ids, _err := mig.Plan(ctx, direction)
		if _err != nil {
			err = _err
			return
		}

		if direction == migration.DirectionDown && c.max > 0 && len(ids) > c.max {
			ids = ids[:c.max]
		}

		ylog.Info(ctx, "migration: plan",
			ylog.KV("direction", direction),
			ylog.KV("ids", ids),
		)
		for _, id := range ids {
			fmt.Println(id)
		}

		return
	}

	var applied int
	switch direction {
	case migration.DirectionDown:
		applied, err = mig.Down(ctx, c.max)
	default:
		applied, err = mig.Up(ctx)
	}

	if err != nil {
		return
	}

	ylog.Info(ctx, "migration: done",
		ylog.KV("direction", direction),
		ylog.KV("applied", applied),
	)
	return
}
