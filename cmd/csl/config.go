package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// workspaceConfig is the optional --config=<file>.yaml payload. Nothing
// in CslLangSvr.cpp reads a config file; the original hardcodes trace
// level "off" and a single HTML theme. This is a supplemented feature
// that lets an editor pin those defaults per workspace instead of
// relying on the client always sending $/setTrace.
type workspaceConfig struct {
	TraceValue string `yaml:"traceValue"`
	HTMLTheme  string `yaml:"htmlTheme"`
}

func defaultWorkspaceConfig() workspaceConfig {
	return workspaceConfig{TraceValue: "off", HTMLTheme: "light"}
}

func loadWorkspaceConfig(path string) (workspaceConfig, error) {
	cfg := defaultWorkspaceConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
