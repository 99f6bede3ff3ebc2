package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/valueproject/recipe-lookup/internal/catalog"
	"github.com/valueproject/recipe-lookup/internal/seed"
)

func main() {
	var dbPath string
	var dryRun bool
	flag.StringVar(&dbPath, "db", "recipes.sqlite", "catalog database to import into")
	flag.BoolVar(&dryRun, "n", false, "parse the seed files and print counts without importing")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: recipeimport [-db path] [-n] <seed file or glob>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	files, err := seed.Expand(flag.Args())
	if err != nil {
		exit(err)
	}
	if len(files) == 0 {
		exit(fmt.Errorf("no seed files match %v", flag.Args()))
	}
	ds, err := seed.LoadFiles(files)
	if err != nil {
		exit(err)
	}
	fmt.Printf("%d file(s): %d materials, %d recipes, %d steps\n", len(files), len(ds.Materials), len(ds.Recipes), len(ds.Steps))
	if dryRun {
		return
	}

	store, err := catalog.Open(dbPath)
	if err != nil {
		exit(err)
	}
	defer store.Close()
	ctx := context.Background()
	if err := store.Import(ctx, ds); err != nil {
		exit(err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		exit(err)
	}
	fmt.Printf("%s now holds %d materials, %d recipes, %d steps\n", store.Path(), stats.Materials, stats.Recipes, stats.Steps)
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "recipeimport: %v\n", err)
	os.Exit(1)
}
