package api

import (
	"context"
	"flag"
	"log"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/pnscred/container"
	"github.com/yusufsyaifudin/pnscred/extd"
)

const (
	ExitSuccess = 0
	ExitErr     = -1
)

type Cmd struct {
	flags      *flag.FlagSet
	appName    string
	appVersion string
	configFile string
}

func NewCmd(appName, appVersion string) func() (cli.Command, error) {
	return func() (cli.Command, error) {
		cmd := &Cmd{
			appName:    appName,
			appVersion: appVersion,
		}
		err := cmd.init()
		return cmd, err
	}
}

var _ cli.Command = (*Cmd)(nil)
var _ cli.CommandFactory = NewCmd("", "")

func (c *Cmd) init() error {
	c.flags = flag.NewFlagSet("api", flag.ContinueOnError)
	c.flags.StringVar(&c.configFile, "config", container.DefaultConfigFile,
		"Config file to load")
	c.flags.StringVar(&c.configFile, "c", container.DefaultConfigFile,
		"Alias for config file to load")
	return nil
}

func (c *Cmd) Help() string {
	return `Usage: pnscred api [-config config.yml]

  Start the credential registry HTTP API.`
}

func (c *Cmd) Synopsis() string {
	return `Start the credential registry HTTP API`
}

func (c *Cmd) Run(args []string) int {
	err := c.flags.Parse(args)
	if err != nil {
		log.Printf("error parsing config argument: %s\n", err)
		return ExitErr
	}

	cfg, err := container.LoadConfig(c.configFile)
	if err != nil {
		log.Printf("error load config: %s\n", err)
		return ExitErr
	}

	// name and version from the binary win over config
	if c.appName != "" {
		cfg.App.Name = c.appName
	}

	if c.appVersion != "" {
		cfg.App.Version = c.appVersion
	}

	if err = extd.RunServer(context.Background(), cfg); err != nil {
		return ExitErr
	}

	return ExitSuccess
}
