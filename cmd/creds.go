package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/tonhe/meerkat/internal/config"
	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/internal/logging"
	"github.com/tonhe/meerkat/internal/vault"
)

func credsCmd(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: meerkat creds <list|add|remove|test>")
		os.Exit(1)
	}

	switch args[0] {
	case "list":
		credsList()
	case "add":
		credsAdd()
	case "remove":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: meerkat creds remove NAME")
			os.Exit(1)
		}
		credsRemove(args[1])
	case "test":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: meerkat creds test NAME [URL]")
			os.Exit(1)
		}
		url := ""
		if len(args) > 2 {
			url = args[2]
		}
		credsTest(args[1], url)
	default:
		fmt.Fprintf(os.Stderr, "Unknown creds command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: meerkat creds <list|add|remove|test>")
		os.Exit(1)
	}
}

// openVault opens the credential vault, prompting for the master password
// if needed. An empty password is tried first to support unprotected vaults.
func openVault() *vault.FileStore {
	path, err := config.GetVaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config directories: %v\n", err)
		os.Exit(1)
	}

	store, err := vault.Open(path, []byte(""))
	if err == nil {
		return store
	}

	store, err = vault.Open(path, getMasterPassword())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening credential vault: %v\n", err)
		os.Exit(1)
	}
	return store
}

// getMasterPassword reads the master password from MEERKAT_MASTER_KEY or prompts.
func getMasterPassword() []byte {
	if key := os.Getenv("MEERKAT_MASTER_KEY"); key != "" {
		return []byte(key)
	}

	fmt.Fprint(os.Stderr, "Master password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		os.Exit(1)
	}
	return password
}

func credsList() {
	store := openVault()
	summaries, err := store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing credentials: %v\n", err)
		os.Exit(1)
	}

	if len(summaries) == 0 {
		fmt.Println("No credentials stored.")
		return
	}

	for _, s := range summaries {
		fmt.Printf("%-20s  user=%s\n", s.Name, s.Username)
	}
}

func credsAdd() {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Credential name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Fprintln(os.Stderr, "Error: name is required")
		os.Exit(1)
	}

	fmt.Print("API user: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)
	if username == "" {
		fmt.Fprintln(os.Stderr, "Error: API user is required")
		os.Exit(1)
	}

	fmt.Fprint(os.Stderr, "API password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		os.Exit(1)
	}

	store := openVault()
	if err := store.Add(vault.Credential{Name: name, Username: username, Password: string(password)}); err != nil {
		fmt.Fprintf(os.Stderr, "Error adding credential: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Credential %q added.\n", name)
}

func credsRemove(name string) {
	store := openVault()
	if err := store.Remove(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error removing credential: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Credential %q removed.\n", name)
}

func credsTest(name, url string) {
	cfg := loadOrDefaultConfig()
	if url == "" {
		url = cfg.IcingaURL
	}
	if url == "" {
		fmt.Fprintln(os.Stderr, "Error: no Icinga URL given or configured")
		os.Exit(1)
	}

	cred, err := openVault().Get(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Testing Icinga API at %s as %q...\n", url, cred.Username)

	client, err := icinga.NewClient(icinga.Config{
		URL:         url,
		Username:    cred.Username,
		Password:    cred.Password,
		InsecureTLS: cfg.IcingaInsecureTLS,
		Timeout:     cfg.RequestTimeout,
	}, logging.Logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	if err := client.Status(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Connection test failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Connection test successful.")
}

// newIcingaClient builds the Icinga client described by cfg, reading the
// configured credential from the vault. credName overrides the config.
func newIcingaClient(cfg *config.Config, credName string) (*icinga.Client, error) {
	if cfg.IcingaURL == "" {
		return nil, fmt.Errorf("icinga_url is not configured; run 'meerkat config icinga URL'")
	}
	if credName == "" {
		credName = cfg.IcingaCredential
	}
	icfg := icinga.Config{
		URL:         cfg.IcingaURL,
		InsecureTLS: cfg.IcingaInsecureTLS,
		Timeout:     cfg.RequestTimeout,
		RateLimit:   cfg.IcingaRateLimit,
	}
	if credName != "" {
		cred, err := openVault().Get(credName)
		if err != nil {
			return nil, fmt.Errorf("credential %q: %w", credName, err)
		}
		icfg.Username = cred.Username
		icfg.Password = cred.Password
	}
	return icinga.NewClient(icfg, logging.Logger())
}
