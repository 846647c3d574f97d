package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/sailsim/internal/core/observability/log"
	"github.com/zeusync/sailsim/internal/sim/boat"
	"github.com/zeusync/sailsim/internal/sim/simulation"
	"github.com/zeusync/sailsim/internal/sim/wind"
	"github.com/zeusync/sailsim/internal/sim/world"
)

var ErrInvalidConfig = errors.New("invalid config")

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("config.schema.json", schemaJSON)

// Config is a whole run: logging, settings, wind, the boat types and map to
// load, and the boats to put on the start line.
type Config struct {
	Log        log.Config          `json:"log" yaml:"log"`
	Simulation simulation.Settings `json:"simulation" yaml:"simulation"`
	Wind       Wind                `json:"wind" yaml:"wind"`
	BoatTypes  []*boat.Type        `json:"boat_types" yaml:"boat_types"`
	Map        world.Map           `json:"map" yaml:"map"`
	Boats      []Spawn             `json:"boats" yaml:"boats"`
}

type Wind struct {
	wind.Params `yaml:",inline"`
	// Initial direction the wind blows toward, degrees.
	Direction float64 `json:"direction" yaml:"direction"`
	Seed      uint64  `json:"seed" yaml:"seed"`
}

// Spawn puts a boat of Type on the start line for client Name.
type Spawn struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// Default returns the values used for everything a document leaves out.
func Default() Config {
	return Config{
		Log:        log.Config{Level: "info", Encoding: "json"},
		Simulation: simulation.DefaultSettings(),
		Wind: Wind{
			Params: wind.Params{
				SpeedAverage:          5,
				MaxGust:               3,
				MaxSpeedVariation:     0.5,
				MaxDirectionVariation: 2,
			},
			Direction: 90,
			Seed:      1,
		},
	}
}

// Load reads the YAML config at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadYAML checks a YAML document against the schema, decodes it over
// Default and validates the result.
func LoadYAML(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// validateSchema runs the document through the JSON schema. YAML is decoded
// generically and round-tripped through JSON so the validator sees only JSON
// types.
func validateSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks what the schema cannot: cross references and the rules
// each package enforces on its own values.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Wind.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Map.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	types := make(map[string]struct{}, len(c.BoatTypes))
	for _, t := range c.BoatTypes {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		if _, dup := types[t.Name]; dup {
			return fmt.Errorf("%w: boat type %q defined twice", ErrInvalidConfig, t.Name)
		}
		types[t.Name] = struct{}{}
	}

	names := make(map[string]struct{}, len(c.Boats))
	for _, s := range c.Boats {
		if _, ok := types[s.Type]; !ok {
			return fmt.Errorf("%w: boat %q has unknown type %q", ErrInvalidConfig, s.Name, s.Type)
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("%w: boat name %q used twice", ErrInvalidConfig, s.Name)
		}
		names[s.Name] = struct{}{}
	}
	return nil
}

// Options turns the wind section into simulation options.
func (w Wind) Options() simulation.Options {
	return simulation.Options{
		Wind:          w.Params,
		WindDirection: w.Direction,
		Seed:          w.Seed,
	}
}
