package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/obadb/reactor/internal/document"
	"github.com/obadb/reactor/internal/logging"
	"github.com/obadb/reactor/internal/query"
	"github.com/obadb/reactor/internal/registry"
)

// demoCmd wires up a Database, a root collection, and a view over it, then
// mutates the collection and prints how the view reacts.
// It is a runnable illustration of the chain-reaction propagation the
// engine is built around.
func demoCmd(args []string) int {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configFile := fs.String("config", "", "Path to configuration file (optional)")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		printDemoUsage(os.Stdout)
		return 0
	}

	cfg, err := loadConfigOrDefault(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}

	log := logging.New(cfg.Logging)
	db := registry.New(cfg.Database, log)

	people := db.Collection("people")
	_, _ = people.Insert(
		document.Doc{"name": "Ada", "age": 36, "dept": "eng"},
		document.Doc{"name": "Grace", "age": 85, "dept": "eng"},
		document.Doc{"name": "Alan", "age": 41, "dept": "research"},
	)

	adults, err := db.CreateView("adults", "people", query.Query{"age": query.Query{"$gte": 40}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating view: %v\n", err)
		return 1
	}

	printView(adults.Name(), adults.Find(nil))

	fmt.Println("\ninserting a 50-year-old engineer...")
	_, _ = people.Insert(document.Doc{"name": "Linus", "age": 50, "dept": "eng"})
	printView(adults.Name(), adults.Find(nil))

	stats := db.Stats()
	fmt.Printf("\ncollections=%d views=%d totalDocs=%d chainSends=%d\n",
		stats.Collections, stats.Views, stats.TotalDocs, stats.ChainSends)

	return 0
}

func printView(name string, docs []document.Doc) {
	fmt.Printf("view %q: %d document(s)\n", name, len(docs))
	for _, d := range docs {
		fmt.Printf("  %v (age %v, %v)\n", d["name"], d["age"], d["dept"])
	}
}
