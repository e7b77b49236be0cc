package prefabs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/milk9111/gladerunner/nav"
	"gopkg.in/yaml.v3"
)

const NavigationSpecFile = "navigation.yaml"

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// NavigationSpec configures the worker pool, agent steering and the
// simulation loop.
type NavigationSpec struct {
	Name     string     `yaml:"name"`
	TickRate int        `yaml:"tick_rate"`
	Level    string     `yaml:"level"`
	Script   string     `yaml:"script"`
	Pool     PoolSpec   `yaml:"pool"`
	Agent    AgentSpec  `yaml:"agent"`
	Player   PlayerSpec `yaml:"player"`
}

type PoolSpec struct {
	// Size 0 selects half the CPUs.
	Size           int           `yaml:"size"`
	QueueSize      int           `yaml:"queue_size"`
	Saturation     string        `yaml:"saturation"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type AgentSpec struct {
	Speed        float64 `yaml:"speed"`
	ArriveRadius float64 `yaml:"arrive_radius"`
	// HalfExtent is half the side of the agent's collision box.
	HalfExtent float64 `yaml:"half_extent"`
}

type PlayerSpec struct {
	Speed      float64 `yaml:"speed"`
	HalfExtent float64 `yaml:"half_extent"`
}

func LoadNavigationSpec() (NavigationSpec, error) {
	spec, err := LoadSpec[NavigationSpec](NavigationSpecFile)
	if err != nil {
		return spec, err
	}
	if err := spec.Validate(); err != nil {
		return spec, fmt.Errorf("prefabs: %s: %w", NavigationSpecFile, err)
	}
	return spec, nil
}

func (s NavigationSpec) Validate() error {
	if s.TickRate < 0 {
		return fmt.Errorf("tick_rate must not be negative, got %d", s.TickRate)
	}
	if s.Pool.Size < 0 || s.Pool.QueueSize < 0 {
		return fmt.Errorf("pool sizes must not be negative")
	}
	if s.Pool.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if _, err := nav.ParseSaturationPolicy(s.Pool.Saturation); err != nil {
		return err
	}
	if s.Agent.Speed < 0 || s.Player.Speed < 0 {
		return fmt.Errorf("speeds must not be negative")
	}
	return nil
}

// TickDuration is the fixed simulation step, 60 Hz when unset.
func (s NavigationSpec) TickDuration() time.Duration {
	rate := s.TickRate
	if rate <= 0 {
		rate = 60
	}
	return time.Second / time.Duration(rate)
}

func (s NavigationSpec) ToPoolConfig(logger *slog.Logger) nav.PoolConfig {
	policy, _ := nav.ParseSaturationPolicy(s.Pool.Saturation)
	return nav.PoolConfig{
		Size:           s.Pool.Size,
		QueueSize:      s.Pool.QueueSize,
		Saturation:     policy,
		RequestTimeout: s.Pool.RequestTimeout,
		Logger:         logger,
	}
}

func (s NavigationSpec) ToControllerConfig(logger *slog.Logger) nav.ControllerConfig {
	return nav.ControllerConfig{
		Speed:        s.Agent.Speed,
		ArriveRadius: s.Agent.ArriveRadius,
		Logger:       logger,
	}
}
