package main

import (
	"flag"
	"fmt"
	"os"

	"sae/internal/di"
	"sae/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug logging to the console")
	flag.Parse()

	_, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %s\n", err)
		os.Exit(1)
	}
}
