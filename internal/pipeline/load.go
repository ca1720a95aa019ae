package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"apidrift/internal/diff"
)

// Data is the file form of the pipeline configuration. All sections are
// optional; absent sections keep the defaults of New.
type Data struct {
	Analyzers       CategoryData        `json:"analyzers" yaml:"analyzers" toml:"analyzers"`
	Filters         CategoryData        `json:"filters" yaml:"filters" toml:"filters"`
	Transforms      CategoryData        `json:"transforms" yaml:"transforms" toml:"transforms"`
	Reporters       CategoryData        `json:"reporters" yaml:"reporters" toml:"reporters"`
	Matchers        CategoryData        `json:"matchers" yaml:"matchers" toml:"matchers"`
	TransformBlocks [][]string          `json:"transformBlocks" yaml:"transformBlocks" toml:"transformBlocks"`
	Criticalities   []CriticalityData   `json:"criticalities" yaml:"criticalities" toml:"criticalities"`
	SeverityMapping map[string]string   `json:"severityMapping" yaml:"severityMapping" toml:"severityMapping"`
	Extensions      []ExtensionConfData `json:"extensions" yaml:"extensions" toml:"extensions"`
	Prune           bool                `json:"prune" yaml:"prune" toml:"prune"`
}

// CategoryData is the include/exclude section of one extension category.
type CategoryData struct {
	Include []string `json:"include" yaml:"include" toml:"include"`
	Exclude []string `json:"exclude" yaml:"exclude" toml:"exclude"`
}

// CriticalityData is one criticality entry.
type CriticalityData struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Level int64  `json:"level" yaml:"level" toml:"level"`
}

// ExtensionConfData is one extension configuration entry in a config file.
type ExtensionConfData struct {
	Extension     string         `json:"extension" yaml:"extension" toml:"extension"`
	ID            string         `json:"id" yaml:"id" toml:"id"`
	Configuration map[string]any `json:"configuration" yaml:"configuration" toml:"configuration"`
}

// Load reads a pipeline configuration file. The decoder is picked by file
// extension: .json, .yaml/.yml or .toml.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return Parse(raw, "json")
	case ".yaml", ".yml":
		return Parse(raw, "yaml")
	case ".toml":
		return Parse(raw, "toml")
	}
	return nil, fmt.Errorf("%w: unsupported configuration format %q", ErrConfigInvalid, filepath.Ext(path))
}

// Parse decodes configuration bytes in the given format.
func Parse(raw []byte, format string) (*Data, error) {
	var d Data
	switch format {
	case "json":
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		}
	case "toml":
		if err := toml.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported configuration format %q", ErrConfigInvalid, format)
	}
	return &d, nil
}

// ApplyTo merges the file data into cfg. Criticalities and the severity
// mapping replace the defaults only when present in the file.
func (d *Data) ApplyTo(cfg *Configuration) error {
	cfg.AnalyzerFilter = IncludeExclude(d.Analyzers)
	cfg.ProviderFilter = IncludeExclude(d.Filters)
	cfg.TransformFilter = IncludeExclude(d.Transforms)
	cfg.ReporterFilter = IncludeExclude(d.Reporters)
	cfg.MatcherFilter = IncludeExclude(d.Matchers)
	cfg.TransformBlocks = d.TransformBlocks
	cfg.PruneForests = cfg.PruneForests || d.Prune

	if len(d.Criticalities) > 0 {
		cfg.Criticalities = cfg.Criticalities[:0]
		for _, cd := range d.Criticalities {
			level, err := safecast.Conv[int](cd.Level)
			if err != nil {
				return fmt.Errorf("%w: criticality %q: %v", ErrConfigInvalid, cd.Name, err)
			}
			cfg.Criticalities = append(cfg.Criticalities, diff.Criticality{Name: cd.Name, Level: level})
		}
	}
	if len(d.SeverityMapping) > 0 {
		mapping := make(diff.SeverityMapping, len(d.SeverityMapping))
		for sevName, critName := range d.SeverityMapping {
			sev, err := diff.ParseSeverity(sevName)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
			}
			crit, ok := cfg.CriticalityByName(critName)
			if !ok {
				return fmt.Errorf("%w: severity mapping refers to unknown criticality %q", ErrConfigInvalid, critName)
			}
			mapping[sev] = crit
		}
		cfg.SeverityMapping = mapping
	}
	for _, ec := range d.Extensions {
		if ec.Extension == "" {
			return fmt.Errorf("%w: extension configuration entry without extension name", ErrConfigInvalid)
		}
		cfg.ExtensionConfigs = append(cfg.ExtensionConfigs, ExtensionConfig{
			Extension: ec.Extension,
			ID:        ec.ID,
			Config:    ec.Configuration,
		})
	}
	return nil
}
