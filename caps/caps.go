// Package caps holds the static capabilities of a radio model. The data is read once when
// a session is created and never changed afterwards.
package caps

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

//go:embed adt200a.yaml
var adt200a []byte

// Capabilities of one radio model. Levels and Functions are informational only, they are
// not controlled through the session.
type Capabilities struct {
	Model          string             `yaml:"model"`
	Manufacturer   string             `yaml:"manufacturer"`
	BackendVersion string             `yaml:"backend_version"`
	Modes          []string           `yaml:"modes"`
	VFOs           []string           `yaml:"vfos"`
	RXRanges       []FrequencyRange   `yaml:"rx_ranges"`
	TXRanges       []FrequencyRange   `yaml:"tx_ranges"`
	Filters        map[string]Filter  `yaml:"filters"`
	Levels         map[string]Granule `yaml:"levels"`
	Functions      []string           `yaml:"functions"`
}

type FrequencyRange struct {
	From      float64 `yaml:"from"`
	To        float64 `yaml:"to"`
	LowPower  int     `yaml:"low_power"`
	HighPower int     `yaml:"high_power"`
}

func (r FrequencyRange) Contains(hz float64) bool {
	return hz >= r.From && hz <= r.To
}

// Filter holds the passband widths of one mode in Hz.
type Filter struct {
	Normal int `yaml:"normal"`
	Narrow int `yaml:"narrow"`
	Wide   int `yaml:"wide"`
}

type Granule struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// Default returns the built-in capabilities of the ADAT ADT-200A.
func Default() *Capabilities {
	result, err := Parse(adt200a)
	if err != nil {
		panic(fmt.Sprintf("embedded capabilities are broken: %v", err))
	}
	return result
}

func Load(filename string) (*Capabilities, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read capabilities: %w", err)
	}
	result, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return result, nil
}

func Parse(data []byte) (*Capabilities, error) {
	result := new(Capabilities)
	err := yaml.UnmarshalStrict(data, result)
	if err != nil {
		return nil, fmt.Errorf("cannot parse capabilities: %w", err)
	}
	err = result.Validate()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Capabilities) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model name missing")
	}
	if len(c.Modes) == 0 {
		return fmt.Errorf("%s: no modes", c.Model)
	}
	if len(c.RXRanges) == 0 {
		return fmt.Errorf("%s: no RX ranges", c.Model)
	}
	for _, r := range append(append([]FrequencyRange{}, c.RXRanges...), c.TXRanges...) {
		if r.From > r.To {
			return fmt.Errorf("%s: invalid range %.0f-%.0f Hz", c.Model, r.From, r.To)
		}
	}
	for mode := range c.Filters {
		if !c.HasMode(mode) {
			return fmt.Errorf("%s: filter for unsupported mode %s", c.Model, mode)
		}
	}
	return nil
}

func (c *Capabilities) HasMode(mode string) bool {
	for _, m := range c.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

func (c *Capabilities) CanReceive(hz float64) bool {
	for _, r := range c.RXRanges {
		if r.Contains(hz) {
			return true
		}
	}
	return false
}

func (c *Capabilities) CanTransmit(hz float64) bool {
	for _, r := range c.TXRanges {
		if r.Contains(hz) {
			return true
		}
	}
	return false
}

// NormalPassband returns the normal filter width for the mode, 0 if unknown.
func (c *Capabilities) NormalPassband(mode string) int {
	return c.Filters[mode].Normal
}

// LevelNames returns the names of all levels in a stable order.
func (c *Capabilities) LevelNames() []string {
	result := make([]string, 0, len(c.Levels))
	for name := range c.Levels {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
