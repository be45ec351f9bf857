package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/hector-sim/hector-core/sim/logging"
	"github.com/hector-sim/hector-core/sim/simerr"
	"github.com/hector-sim/hector-core/sim/trace"
)

// ModelConfig is a model input file: run settings, outputs and the components with
// their initial variable values.
type ModelConfig struct {
	Version    string            `yaml:"version"`
	Core       CoreSection       `yaml:"core"`
	Output     OutputSection     `yaml:"output"`
	Components []ComponentConfig `yaml:"components"`
}

// CoreSection holds run-wide settings.
type CoreSection struct {
	RunName   string  `yaml:"run_name"`
	StartDate float64 `yaml:"start_date"`
	EndDate   float64 `yaml:"end_date"`
	Step      float64 `yaml:"step"`
	LogDir    string  `yaml:"log_dir"`   // empty: channels write to stderr
	LogLevel  string  `yaml:"log_level"` // logrus level name; empty means info
	Trace     string  `yaml:"trace"`     // none | messages
}

// OutputSection names the optional output files. Empty strings disable the output.
type OutputSection struct {
	CSV     string `yaml:"csv"`
	Restart string `yaml:"restart"`
}

// ComponentConfig declares one component. Vars keys are variable names; a key of the
// form "name[date]" sets a dated value. Values are passed to the component unparsed.
type ComponentConfig struct {
	Name string            `yaml:"name"`
	Kind string            `yaml:"kind"`
	Vars map[string]string `yaml:"vars"`
}

// ValidConfigVersions is the set of recognized model file versions.
var ValidConfigVersions = map[string]bool{"": true, "1": true}

// LoadModelConfig reads and strictly parses a YAML model file. Unknown keys are errors.
func LoadModelConfig(path string) (*ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model config: %w", err)
	}
	return ParseModelConfig(data)
}

// ParseModelConfig strictly parses a YAML model document.
func ParseModelConfig(data []byte) (*ModelConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var cfg ModelConfig
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing model config: empty document")
		}
		return nil, fmt.Errorf("parsing model config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the run settings, component kinds and names, and variable keys.
func (m *ModelConfig) Validate() error {
	if !ValidConfigVersions[m.Version] {
		return simerr.New(simerr.ConfigError, "unsupported model config version %q", m.Version)
	}
	if !(m.Core.StartDate < m.Core.EndDate) {
		return simerr.New(simerr.ConfigError, "start_date %g must be before end_date %g", m.Core.StartDate, m.Core.EndDate)
	}
	if !(m.Core.Step > 0) {
		return simerr.New(simerr.ConfigError, "step must be positive, got %g", m.Core.Step)
	}
	if m.Core.LogLevel != "" {
		if _, err := logrus.ParseLevel(m.Core.LogLevel); err != nil {
			return simerr.RethrowAs(simerr.ConfigError, err, "invalid log_level")
		}
	}
	if !trace.IsValidTraceLevel(m.Core.Trace) {
		return simerr.New(simerr.ConfigError, "unknown trace level %q", m.Core.Trace)
	}
	if len(m.Components) == 0 {
		return simerr.New(simerr.ConfigError, "model has no components")
	}
	seen := make(map[string]bool, len(m.Components))
	for i, c := range m.Components {
		if c.Name == "" {
			return simerr.New(simerr.ConfigError, "component %d has no name", i)
		}
		if seen[c.Name] {
			return simerr.New(simerr.ConfigError, "duplicate component name %q", c.Name)
		}
		seen[c.Name] = true
		if !IsValidKind(c.Kind) {
			return simerr.New(simerr.ConfigError, "component %s: unknown kind %q (valid: %v)", c.Name, c.Kind, KindNames())
		}
		for key := range c.Vars {
			if _, _, err := ParseVarKey(key); err != nil {
				return simerr.Rethrow(err, "component "+c.Name)
			}
		}
	}
	return nil
}

// ParseVarKey splits "name[date]" into its name and date. A plain "name" returns
// UndefinedIndex as the date.
func ParseVarKey(key string) (string, float64, error) {
	key = strings.TrimSpace(key)
	open := strings.IndexByte(key, '[')
	if open < 0 {
		if key == "" || strings.ContainsRune(key, ']') {
			return "", 0, simerr.New(simerr.ConfigError, "malformed variable key %q", key)
		}
		return key, UndefinedIndex(), nil
	}
	if open == 0 || !strings.HasSuffix(key, "]") {
		return "", 0, simerr.New(simerr.ConfigError, "malformed variable key %q", key)
	}
	date, err := strconv.ParseFloat(strings.TrimSpace(key[open+1:len(key)-1]), 64)
	if err != nil {
		return "", 0, simerr.RethrowAs(simerr.ConfigError, err, fmt.Sprintf("bad date in variable key %q", key))
	}
	if !IsValidDate(date) {
		return "", 0, simerr.New(simerr.InvalidDate, "variable key %q has a non-finite date", key)
	}
	return key[:open], date, nil
}

// LogLevel returns the configured channel level, defaulting to info.
func (m *ModelConfig) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(m.Core.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// BuildCore validates the config, constructs and initializes the core and its
// components, and feeds every variable through the message path. If anything fails
// after Init the core is shut down before returning.
func BuildCore(m *ModelConfig) (*Core, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	core, err := NewCore(CoreConfig{
		RunName:   m.Core.RunName,
		StartDate: m.Core.StartDate,
		EndDate:   m.Core.EndDate,
		Step:      m.Core.Step,
		Log:       logging.Config{Dir: m.Core.LogDir},
		LogLevel:  m.LogLevel(),
		Trace:     trace.TraceLevel(m.Core.Trace),
	})
	if err != nil {
		return nil, err
	}
	for _, cc := range m.Components {
		comp, err := NewComponent(cc.Kind, cc.Name)
		if err != nil {
			return nil, err
		}
		if err := core.AddComponent(comp); err != nil {
			return nil, err
		}
	}
	if err := core.Init(); err != nil {
		return nil, abandon(core, err)
	}
	for _, cc := range m.Components {
		if err := feedVars(core, cc); err != nil {
			return nil, abandon(core, simerr.Rethrow(err, "while parsing "+cc.Name))
		}
	}
	logrus.Debugf("built core %q with %d components", core.RunName(), len(m.Components))
	return core, nil
}

// abandon shuts down a partially built core, keeping err as the primary failure.
func abandon(core *Core, err error) error {
	if sdErr := core.ShutDown(); sdErr != nil {
		return errors.Join(err, sdErr)
	}
	return err
}

// feedVars sends each variable in key order so failures are reproducible.
func feedVars(core *Core, cc ComponentConfig) error {
	keys := make([]string, 0, len(cc.Vars))
	for k := range cc.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		name, date, err := ParseVarKey(key)
		if err != nil {
			return err
		}
		if err := core.SetData(cc.Name, name, MessageData{Date: date, ValueStr: cc.Vars[key]}); err != nil {
			return err
		}
	}
	return nil
}
