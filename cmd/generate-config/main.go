package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/linkpanel/internal/config"
	"github.com/debemdeboas/linkpanel/internal/model"
)

func main() {
	// Create a config with defaults applied
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	// A sample panel showing both entry shapes
	cfg.Widgets.Links.Links = model.LinksConfig{
		{Label: "Docs", Entry: model.SimpleLink("https://example.com/docs")},
		{Label: "Source", Entry: model.DetailedLink("https://github.com/example/project", false)},
		{Label: "Status", Entry: model.DetailedLink("https://status.example.com", true)},
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	header := "# Link Panel Configuration Example\n" +
		"# Copy this file to config.yaml and customize as needed\n" +
		"# S3 credentials are read from " + config.EnvS3AccessKeyID + " and " + config.EnvS3SecretAccessKey + "\n\n"
	output := header + string(yamlData)

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		fmt.Print(output)
		return
	}

	if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
