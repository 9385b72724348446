package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/meeting-rotation-api/pkg/auth"
	"github.com/arnavshah/meeting-rotation-api/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <workspace>")
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	workspace := os.Args[1]
	apiKey, err := auth.NewManager(cfg.Auth).GenerateKey(workspace)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated Key for %s:\n%s\n", workspace, apiKey)
}
