package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"
)

// WorkspaceConfigName is the per-workspace settings file seeded on first use.
const WorkspaceConfigName = ".makelist.yml"

// Config carries every setting the core operates on. It is built once per
// command invocation and passed down explicitly; nothing in core reads
// configuration ambiently.
type Config struct {
	ManifestName      string           `yaml:"manifest_name"`
	ExtensionMapping  ExtensionMapping `yaml:"extension_mapping"`
	ManagedExtensions []string         `yaml:"managed_extensions"`
	StrictNesting     bool             `yaml:"strict_parens"`
}

func DefaultConfig() Config {
	return Config{
		ManifestName: "CMakeLists.txt",
		ExtensionMapping: ExtensionMapping{
			".c":   "SOURCES",
			".cc":  "SOURCES",
			".cpp": "SOURCES",
			".h":   "HEADERS",
			".hpp": "HEADERS",
		},
		ManagedExtensions: []string{".c", ".cc", ".cpp", ".h", ".hpp"},
	}
}

// EnsureWorkspaceConfig loads the workspace settings file, seeding it with
// defaults when absent. Values missing from an existing file fall back to
// defaults so older config files keep working.
func EnsureWorkspaceConfig(logger logr.Logger, workspaceRoot string) (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(workspaceRoot, WorkspaceConfigName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return cfg, fmt.Errorf("error encoding default config: %w", err)
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return cfg, fmt.Errorf("error seeding workspace config %s: %w", path, err)
		}
		logger.Info("Seeded workspace config with defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("error reading workspace config %s: %w", path, err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return cfg, fmt.Errorf("error parsing workspace config %s: %w", path, err)
	}
	if loaded.ManifestName != "" {
		cfg.ManifestName = loaded.ManifestName
	}
	if len(loaded.ExtensionMapping) > 0 {
		cfg.ExtensionMapping = loaded.ExtensionMapping
	}
	if len(loaded.ManagedExtensions) > 0 {
		cfg.ManagedExtensions = loaded.ManagedExtensions
	}
	cfg.StrictNesting = loaded.StrictNesting

	logger.V(1).Info("Loaded workspace config", "path", path,
		"mappings", len(cfg.ExtensionMapping), "extensions", len(cfg.ManagedExtensions))
	return cfg, nil
}
