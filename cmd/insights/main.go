// Command insights serves the LinkedIn company-page insights API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Akshatb2006/Linkedin-Insights/internal/app"
	"github.com/Akshatb2006/Linkedin-Insights/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (optional; env vars apply on top)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "insights: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	application, err := app.Build(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	return application.Run(ctx)
}
