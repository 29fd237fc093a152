package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning holds runtime knobs for the terminal session. Game rules are fixed
// and have no knobs.
type Tuning struct {
	TickDurationMs int    `yaml:"tick_duration_ms"`
	InputPollMs    int    `yaml:"input_poll_ms"`
	HeaderRows     int    `yaml:"header_rows"`
	Seed           uint64 `yaml:"seed"`
	EventBuffer    int    `yaml:"event_buffer"`
}

func Defaults() Tuning {
	return Tuning{
		TickDurationMs: 100,
		InputPollMs:    10,
		HeaderRows:     3,
		Seed:           0xDEADBEEF,
		EventBuffer:    1024,
	}
}

// Load reads path over the defaults, so a partial file only overrides what
// it names. Missing files are returned as-is for os.IsNotExist checks.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickDurationMs <= 0 {
		return fmt.Errorf("tick_duration_ms must be > 0 (got %d)", t.TickDurationMs)
	}
	if t.InputPollMs <= 0 || t.InputPollMs > 10 {
		return fmt.Errorf("input_poll_ms must be in 1..10 (got %d)", t.InputPollMs)
	}
	if t.HeaderRows < 0 {
		return fmt.Errorf("header_rows must be >= 0 (got %d)", t.HeaderRows)
	}
	if t.EventBuffer <= 0 {
		return fmt.Errorf("event_buffer must be > 0 (got %d)", t.EventBuffer)
	}
	return nil
}

func (t Tuning) TickDuration() time.Duration {
	return time.Duration(t.TickDurationMs) * time.Millisecond
}

func (t Tuning) PollWait() time.Duration {
	return time.Duration(t.InputPollMs) * time.Millisecond
}
