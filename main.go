package main

import (
	"flag"
	"fmt"
	"os"

	"fmd/internal/di"
	"fmd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "log to stdout instead of files")
	flag.Parse()

	_, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fmd: %s\n", err)
		os.Exit(1)
	}
}
