//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/afd-framework/afd-go/pkg/command"
	"github.com/afd-framework/afd-go/pkg/pipeline"
)

func main() {
	data, err := command.ReflectSchema(&pipeline.Request{},
		"https://github.com/afd-framework/afd-go/schemas/pipeline-request.json",
		"Pipeline Request",
		"A multi-step pipeline request: steps, references, conditions and execution options")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll("schemas", 0755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile("schemas/pipeline-request.json", data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("wrote schemas/pipeline-request.json")
}
