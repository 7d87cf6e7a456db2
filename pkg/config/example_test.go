package config_test

import (
	"fmt"

	"github.com/schlafen318/dual-momentum-sub001/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	// Access configuration values
	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Data backend: %s\n", cfg.Data.Backend)
	fmt.Printf("DB Max Connections: %d\n", cfg.Database.MaxConns)
}
