// Package config loads the pcodestep configuration file and applies
// environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/invopop/jsonschema"

	"pcodestep/internal/ui/colorize"
)

// Environment overrides.
const (
	EnvNoColor = "PCODESTEP_NO_COLOR"
	EnvDebug   = "PCODESTEP_DEBUG"
)

// Config represents configuration for the pcodestep tool
type Config struct {
	Debug        bool              `json:"debug,omitempty" jsonschema:"title=Debug,description=Enable debug logging"`
	NoColor      bool              `json:"noColor,omitempty" jsonschema:"title=No Color,description=Render p-code without colors"`
	Indent       bool              `json:"indent,omitempty" jsonschema:"title=Indent,description=Indent op rows under line labels"`
	Colors       map[string]string `json:"colors,omitempty" jsonschema:"title=Colors,description=Category class name to #rrggbb color"`
	CounterColor string            `json:"counterColor,omitempty" jsonschema:"title=Counter Color,description=Highlight of the row about to execute,pattern=^#[0-9a-fA-F]{6}$"`
}

// Load reads the config at path. An empty path yields the defaults. Either
// way the environment overrides are applied.
func Load(path string) (Config, error) {
	var c Config
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer f.Close()
		if c, err = Decode(f); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	return c.withEnv(os.Getenv)
}

// Decode parses a config document.
func Decode(r io.Reader) (Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return c, nil
}

func (c Config) withEnv(getenv func(string) string) (Config, error) {
	for name, dst := range map[string]*bool{EnvNoColor: &c.NoColor, EnvDebug: &c.Debug} {
		v := getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", name, err)
		}
		*dst = b
	}
	return c, nil
}

// Palette derives the render palette from the defaults and c.
func (c Config) Palette() (colorize.Palette, error) {
	p, err := colorize.DefaultPalette().Override(c.Colors)
	if err != nil {
		return p, err
	}
	if c.CounterColor != "" {
		if p, err = p.WithCounter(c.CounterColor); err != nil {
			return p, err
		}
	}
	p.NoColor = c.NoColor
	return p, nil
}

// Schema returns the JSON schema of Config.
func Schema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	return reflector.Reflect(&Config{})
}
