package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tonhe/meerkat/cmd"
)

func main() {
	if len(os.Args) > 1 && cmd.IsSubcommand(os.Args[1]) {
		cmd.Execute(os.Args[1:])
		return
	}

	var opts cmd.RunOptions
	flag.StringVar(&opts.Dashboard, "dashboard", "", "Dashboard slug to open")
	flag.StringVar(&opts.Theme, "theme", "", "Theme override")
	flag.Parse()

	if err := cmd.Run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
