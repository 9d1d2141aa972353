package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/tonhe/meerkat/internal/config"
	"github.com/tonhe/meerkat/tui/styles"
)

func configCmd(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: meerkat config <path|show|theme|meerkat|icinga>")
		os.Exit(1)
	}

	switch args[0] {
	case "path":
		configPath()
	case "show":
		configShow()
	case "theme":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: meerkat config theme NAME")
			os.Exit(1)
		}
		configSetTheme(args[1])
	case "meerkat":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: meerkat config meerkat URL")
			os.Exit(1)
		}
		configSetMeerkat(args[1])
	case "icinga":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: meerkat config icinga URL [CREDENTIAL]")
			os.Exit(1)
		}
		cred := ""
		if len(args) > 2 {
			cred = args[2]
		}
		configSetIcinga(args[1], cred)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: meerkat config <path|show|theme|meerkat|icinga>")
		os.Exit(1)
	}
}

func configPath() {
	path, err := config.GetConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(path)
}

func configShow() {
	cfg := loadOrDefaultConfig()
	cfg.RequestTimeoutStr = cfg.RequestTimeout.String()
	cfg.MinIntervalStr = cfg.MinInterval.String()
	cfg.RetryIntervalStr = cfg.RetryInterval.String()
	if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configSetTheme(name string) {
	t, ok := styles.Lookup(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown theme %q\n", name)
		fmt.Fprintln(os.Stderr, "Run 'meerkat themes' to see available themes.")
		os.Exit(1)
	}

	cfg := loadOrDefaultConfig()
	cfg.Theme = t.Slug
	saveConfig(cfg)

	fmt.Printf("Default theme set to %s.\n", t.Name)
}

func configSetMeerkat(url string) {
	cfg := loadOrDefaultConfig()
	cfg.MeerkatURL = url
	saveConfig(cfg)

	fmt.Printf("Meerkat server set to %s.\n", url)
}

func configSetIcinga(url, cred string) {
	cfg := loadOrDefaultConfig()
	cfg.IcingaURL = url
	if cred != "" {
		cfg.IcingaCredential = cred
	}
	saveConfig(cfg)

	fmt.Printf("Icinga API set to %s.\n", url)
	if cfg.IcingaCredential == "" {
		fmt.Println("No credential selected; run 'meerkat config icinga URL NAME' after 'meerkat creds add'.")
	}
}

func themesCmd() {
	for _, slug := range styles.Names() {
		fmt.Printf("%-20s %s\n", slug, styles.Themes[slug].Name)
	}
}

// loadOrDefaultConfig loads the config from disk, falling back to defaults.
func loadOrDefaultConfig() *config.Config {
	path, err := config.GetConfigPath()
	if err != nil {
		return config.DefaultConfig()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using defaults\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

// saveConfig validates the config and writes it to disk, creating
// directories as needed.
func saveConfig(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := config.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config directories: %v\n", err)
		os.Exit(1)
	}

	path, err := config.GetConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.SaveConfig(cfg, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
}
