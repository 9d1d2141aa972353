package cmd

import (
	"fmt"
	"os"
)

// Version is stamped at build time.
var Version = "v0.1.0"

// knownSubcommands is the set of CLI subcommands that bypass the TUI.
var knownSubcommands = map[string]bool{
	"dashboard": true,
	"objects":   true,
	"creds":     true,
	"config":    true,
	"themes":    true,
	"version":   true,
	"help":      true,
}

// IsSubcommand returns true if the argument is a known CLI subcommand.
func IsSubcommand(arg string) bool {
	return knownSubcommands[arg]
}

// Execute dispatches to the appropriate CLI subcommand handler.
func Execute(args []string) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "dashboard":
		dashboardCmd(args[1:])
	case "objects":
		objectsCmd(args[1:])
	case "creds":
		credsCmd(args[1:])
	case "config":
		configCmd(args[1:])
	case "themes":
		themesCmd()
	case "version":
		fmt.Println("meerkat " + Version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meerkat - Icinga status wall for the terminal

Usage:
  meerkat                       Launch the dashboard viewer
  meerkat --dashboard SLUG      Launch with a specific dashboard
  meerkat --theme NAME          Launch with theme override
  meerkat dashboard <cmd>       Manage dashboards on the Meerkat server
  meerkat objects TYPE          List Icinga objects
  meerkat creds <cmd>           Manage Icinga API credentials
  meerkat config <cmd>          Manage configuration
  meerkat themes                List available themes
  meerkat version               Show version
  meerkat help                  Show this help

Dashboard Commands:
  meerkat dashboard list [--tag TAG]       List dashboards
  meerkat dashboard show SLUG              Show a dashboard's elements
  meerkat dashboard create TITLE           Create an empty dashboard
  meerkat dashboard clone SLUG TITLE       Copy a dashboard under a new title
  meerkat dashboard delete SLUG            Delete a dashboard
  meerkat dashboard export SLUG [FILE]     Write a dashboard to a TOML file
  meerkat dashboard import [FILE]          Create or replace a dashboard from a file;
                                           without FILE, list exported dashboards

Objects:
  meerkat objects [--credential NAME] [--filter EXPR] host|service|hostgroup|servicegroup

Credential Commands:
  meerkat creds list                List stored credentials
  meerkat creds add                 Add a credential (interactive)
  meerkat creds remove NAME         Remove a credential
  meerkat creds test NAME [URL]     Check the Icinga API accepts a credential

Config Commands:
  meerkat config path               Show config file path
  meerkat config show               Print the effective config
  meerkat config theme NAME         Set default theme
  meerkat config meerkat URL        Set the Meerkat server URL
  meerkat config icinga URL [CRED]  Set the Icinga API URL and credential`)
}
