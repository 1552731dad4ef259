// Package main provides the afd-mcp binary — MCP server for AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/afd-framework/afd-go/pkg/builtin"
	"github.com/afd-framework/afd-go/pkg/server"
)

var version = "dev"

func main() {
	s := server.New(builtin.Registry(version), server.Options{Name: "afd", Version: version})
	if err := s.ServeStdio(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
