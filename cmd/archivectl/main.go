package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"docarchive/cmd/archivectl/cli"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewMigrateCommand())
	root.AddCommand(cli.NewTokenCommand())
	root.AddCommand(cli.NewThumbsCommand())
	root.AddCommand(cli.NewSequenceCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
