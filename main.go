package main

import (
	"log"
	"os"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/pnscred/cmd/api"
	"github.com/yusufsyaifudin/pnscred/cmd/migrate"
	"github.com/yusufsyaifudin/pnscred/cmd/validate"
)

func main() {
	const appName, appVersion = "pnscred", "1.0.0"

	apiCmd := api.NewCmd(appName, appVersion)

	c := cli.NewCLI(appName, appVersion)
	c.Args = os.Args[1:]
	c.Autocomplete = true
	c.Commands = map[string]cli.CommandFactory{
		"":         apiCmd, // default command if no subcommand defined
		"api":      apiCmd,
		"migrate":  migrate.NewCmd(),
		"validate": validate.NewCmd(),
	}

	exitStatus, err := c.Run()
	if err != nil {
		log.Println(err)
	}

	os.Exit(exitStatus)
}
