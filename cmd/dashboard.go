package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tonhe/meerkat/internal/config"
	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/logging"
	"github.com/tonhe/meerkat/internal/meerkat"
)

func dashboardCmd(args []string) {
	usage := "Usage: meerkat dashboard <list|show|create|clone|delete|export|import>"
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	need := func(n int, msg string) {
		if len(args) < n+1 {
			fmt.Fprintln(os.Stderr, "Usage: meerkat dashboard "+msg)
			os.Exit(1)
		}
	}

	switch args[0] {
	case "list":
		dashboardList(args[1:])
	case "show":
		need(1, "show SLUG")
		dashboardShow(args[1])
	case "create":
		need(1, "create TITLE")
		dashboardCreate(strings.Join(args[1:], " "))
	case "clone":
		need(2, "clone SLUG TITLE")
		dashboardClone(args[1], strings.Join(args[2:], " "))
	case "delete":
		need(1, "delete SLUG")
		dashboardDelete(args[1])
	case "export":
		need(1, "export SLUG [FILE]")
		file := ""
		if len(args) > 2 {
			file = args[2]
		}
		dashboardExport(args[1], file)
	case "import":
		if len(args) < 2 {
			dashboardExports()
			return
		}
		dashboardImport(args[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown dashboard command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
}

// openServer returns a Meerkat client and a context bounded by the
// configured request timeout.
func openServer() (*meerkat.Client, context.Context, context.CancelFunc) {
	cfg := loadOrDefaultConfig()
	client, err := meerkat.NewClient(cfg.MeerkatURL, cfg.RequestTimeout, logging.Logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	return client, ctx, cancel
}

func fail(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", a...)
	os.Exit(1)
}

func dashboardList(args []string) {
	fs := flag.NewFlagSet("dashboard list", flag.ExitOnError)
	tag := fs.String("tag", "", "Only list dashboards carrying this tag")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	client, ctx, cancel := openServer()
	defer cancel()

	list, err := client.List(ctx, *tag)
	if err != nil {
		fail("%v", err)
	}
	if len(list) == 0 {
		fmt.Println("No dashboards.")
		return
	}
	for _, d := range list {
		fmt.Printf("%-24s  %-32s  %3d elements  %s\n", d.Slug, d.Title, len(d.Elements), strings.Join(d.Tags, ","))
	}
}

func dashboardShow(slug string) {
	client, ctx, cancel := openServer()
	defer cancel()

	d, err := client.Get(ctx, slug)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("%s (%s)\n", d.Title, d.Slug)
	if len(d.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(d.Tags, ", "))
	}
	if len(d.Variables) > 0 {
		fmt.Printf("Variables: %d\n", len(d.Variables))
	}
	for i, el := range d.Elements {
		line := fmt.Sprintf("%3d  %-18s  %-24s", i, el.Type.Label(), el.Title)
		if el.Type.Monitored() {
			line += "  " + d.Selector(i).String()
		}
		fmt.Println(line)
	}
}

func dashboardCreate(title string) {
	client, ctx, cancel := openServer()
	defer cancel()

	d := dashboard.Dashboard{Title: title}
	if err := dashboard.Validate(d); err != nil {
		fail("%v", err)
	}
	slug, err := client.Create(ctx, d)
	if err != nil {
		fail("%v", err)
	}
	fmt.Printf("Dashboard %q created as %s.\n", title, slug)
}

func dashboardClone(slug, title string) {
	client, ctx, cancel := openServer()
	defer cancel()

	src, err := client.Get(ctx, slug)
	if err != nil {
		fail("%v", err)
	}
	d := src.Clone()
	d.Title = title
	d.Slug = ""
	if dashboard.TitleToSlug(title) == src.Slug {
		fail("%q would replace %s; pick another title", title, src.Slug)
	}
	newSlug, err := client.Create(ctx, d)
	if err != nil {
		fail("%v", err)
	}
	fmt.Printf("Dashboard %s cloned to %s.\n", slug, newSlug)
}

func dashboardDelete(slug string) {
	client, ctx, cancel := openServer()
	defer cancel()

	if err := client.Delete(ctx, slug); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Dashboard %s deleted.\n", slug)
}

func dashboardExport(slug, file string) {
	client, ctx, cancel := openServer()
	defer cancel()

	d, err := client.Get(ctx, slug)
	if err != nil {
		fail("%v", err)
	}
	if file == "" {
		if err := config.EnsureDirs(); err != nil {
			fail("%v", err)
		}
		dir, err := config.GetExportsDir()
		if err != nil {
			fail("%v", err)
		}
		file = filepath.Join(dir, d.Slug+".toml")
	}
	if err := dashboard.SaveFile(d, file); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Dashboard %s written to %s.\n", slug, file)
}

// dashboardExports lists what "import" can pick up from the exports
// directory.
func dashboardExports() {
	dir, err := config.GetExportsDir()
	if err != nil {
		fail("%v", err)
	}
	names, err := dashboard.ListFiles(dir)
	if err != nil && !os.IsNotExist(err) {
		fail("%v", err)
	}
	fmt.Println("Usage: meerkat dashboard import FILE")
	if len(names) == 0 {
		return
	}
	fmt.Printf("\nExported dashboards in %s:\n", dir)
	for _, name := range names {
		fmt.Println("  " + name)
	}
}

func dashboardImport(file string) {
	if _, err := os.Stat(file); os.IsNotExist(err) && !strings.ContainsRune(file, os.PathSeparator) {
		// bare names refer to the exports directory
		if dir, derr := config.GetExportsDir(); derr == nil {
			for _, name := range []string{file, file + ".toml", file + ".json"} {
				if _, serr := os.Stat(filepath.Join(dir, name)); serr == nil {
					file = filepath.Join(dir, name)
					break
				}
			}
		}
	}
	d, err := dashboard.LoadFile(file)
	if err != nil {
		fail("%v", err)
	}
	if err := dashboard.Validate(d); err != nil {
		fail("%v", err)
	}

	client, ctx, cancel := openServer()
	defer cancel()

	slug, err := client.Create(ctx, d)
	if err != nil {
		fail("%v", err)
	}
	fmt.Printf("Dashboard %q imported as %s.\n", d.Title, slug)
}
