package main

import (
	"flag"
	"fmt"
	"os"
	"srtrack/internal/di"
	"srtrack/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "c", "config/config.yaml", "path to the config file")
	flag.BoolVar(&flags.DebugMode, "d", false, "debug mode")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "srtrack: %s\n", err)
		os.Exit(1)
	}
}
