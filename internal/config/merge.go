package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rshade/carelist/internal/cache"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyLogging = "logging"
	keyList    = "list"
	keySource  = "source"
	keyCache   = "cache"
	keySession = "session"
)

// ProjectFileName is the project-local overlay looked up in the working directory.
const ProjectFileName = ".carelist.yaml"

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// target. Keys present in the overlay replace entire sections in the target.
// Keys absent in the overlay are left unchanged; unknown keys are ignored.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		if err = unmarshalSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}
	return nil
}

// unmarshalSection decodes node into a fresh value for key so the section is
// replaced rather than merged field by field.
func unmarshalSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyLogging:
		var v LoggingConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Logging = v
	case keyList:
		var v ListConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.List = v
	case keySource:
		var v SourceConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Source = v
	case keyCache:
		var v cache.Config
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Cache = v
	case keySession:
		var v SessionConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Session = v
	}
	return nil
}
