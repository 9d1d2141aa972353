package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/tonhe/meerkat/internal/icinga"
)

func objectsCmd(args []string) {
	fs := flag.NewFlagSet("objects", flag.ExitOnError)
	credName := fs.String("credential", "", "Credential name (defaults to icinga_credential)")
	filter := fs.String("filter", "", "Icinga filter expression")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: meerkat objects [--credential NAME] [--filter EXPR] host|service|hostgroup|servicegroup")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: TYPE argument is required")
		fs.Usage()
		os.Exit(1)
	}

	t := icinga.ObjectType(fs.Arg(0))
	if !t.Valid() {
		fmt.Fprintf(os.Stderr, "Error: unknown object type %q\n", fs.Arg(0))
		os.Exit(1)
	}

	cfg := loadOrDefaultConfig()
	client, err := newIcingaClient(cfg, *credName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	var objs []icinga.Object
	if *filter != "" {
		objs, err = client.Filter(ctx, t, *filter)
	} else {
		objs, err = client.Objects(ctx, t)
	}
	if err != nil && !errors.Is(err, icinga.ErrNoObjects) {
		fmt.Fprintf(os.Stderr, "Error listing %s objects: %v\n", t, err)
		os.Exit(1)
	}

	if len(objs) == 0 {
		fmt.Println("No objects found.")
		return
	}

	sort.Slice(objs, func(i, j int) bool {
		return objs[i].Name < objs[j].Name
	})

	grouped := t == icinga.HostGroup || t == icinga.ServiceGroup
	for _, o := range objs {
		if grouped {
			fmt.Printf("%-40s  %s\n", o.Name, o.Label())
			continue
		}
		state := icinga.StateFromCode(t, o.Attrs.Code())
		fmt.Printf("%-40s  %-12s  %s\n", o.Name, state.Label(o.Attrs.Acknowledged()), o.Attrs.LastCheckResult.Output)
	}
}
