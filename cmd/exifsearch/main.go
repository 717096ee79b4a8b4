package main

import (
	"fmt"
	"os"

	"github.com/Confuzu/ExifData-Seach-and-Move/cmd/exifsearch/cli"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	info := cli.VersionInfo{
		Version: version,
		Commit:  commit,
	}

	root := cli.NewRootCommand(info)

	root.AddCommand(cli.NewVersionCommand(info))
	root.AddCommand(cli.NewConfigCommand())

	root.AddCommand(cli.NewIndexCommand())
	root.AddCommand(cli.NewSearchCommand())
	root.AddCommand(cli.NewModelsCommand())
	root.AddCommand(cli.NewWatchCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
