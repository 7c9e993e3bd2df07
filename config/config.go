package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/paulmach/orb"

	"grid-planner/grid"
	"grid-planner/solve"
)

type Config struct {
	Grid    GridConfig    `toml:"grid"`
	AStar   AStarConfig   `toml:"astar"`
	ACO     ACOConfig     `toml:"aco"`
	Server  ServerConfig  `toml:"server"`
	Viewer  ViewerConfig  `toml:"viewer"`
	Logging LoggingConfig `toml:"logging"`
}

// GridConfig describes the grid built when no layout file is given.
type GridConfig struct {
	Width    int     `toml:"width"`     // cells
	Height   int     `toml:"height"`    // cells
	CellSize float64 `toml:"cell_size"` // world units per cell
	OriginX  float64 `toml:"origin_x"`
	OriginY  float64 `toml:"origin_y"`
	Border   bool    `toml:"border"` // block the outer ring of cells
	Layout   string  `toml:"layout"` // optional YAML layout, overrides the fields above
}

type AStarConfig struct {
	StepSize      float64 `toml:"step_size"`      // world units between probes, 0 means cell size
	MaxExpansions int     `toml:"max_expansions"` // 0 = unlimited
}

type ACOConfig struct {
	ExploitationChance           float64 `toml:"exploitation_chance"`
	Alpha                        float64 `toml:"alpha"`
	Beta                         float64 `toml:"beta"`
	ElicitationConstant          float64 `toml:"elicitation_constant"`
	EvaporationCoefficient       float64 `toml:"evaporation_coefficient"`
	DepositConstant              float64 `toml:"deposit_constant"`
	GlobalEvaporationCoefficient float64 `toml:"global_evaporation_coefficient"`
	GlobalDepositConstant        float64 `toml:"global_deposit_constant"`
	InitPheromone                float64 `toml:"init_pheromone"`
	Ants                         int     `toml:"ants"`
	Rounds                       int     `toml:"rounds"` // steps per ant per group
	Groups                       int     `toml:"groups"` // groups per call
	Seed                         int64   `toml:"seed"`   // 0 = seeded from the clock
}

type ServerConfig struct {
	BindAddress     string  `toml:"bind_address"`
	SimplifyEpsilon float64 `toml:"simplify_epsilon"` // 0 disables path simplification
}

type ViewerConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	Sound    bool          `toml:"sound"`  // chime when a path arrives
	Solver   string        `toml:"solver"` // "astar" or "aco"
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // log destination, empty means stderr
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	aco := solve.DefaultColonyConfig()
	astar := solve.DefaultAnyAngleConfig()
	return &Config{
		Grid: GridConfig{
			Width:    20,
			Height:   15,
			CellSize: 32,
			Border:   true,
		},
		AStar: AStarConfig{
			StepSize:      astar.StepSize,
			MaxExpansions: astar.MaxExpansions,
		},
		ACO: ACOConfig{
			ExploitationChance:           aco.ExploitationChance,
			Alpha:                        aco.Alpha,
			Beta:                         aco.Beta,
			ElicitationConstant:          aco.ElicitationConstant,
			EvaporationCoefficient:       aco.EvaporationCoefficient,
			DepositConstant:              aco.DepositConstant,
			GlobalEvaporationCoefficient: aco.GlobalEvaporationCoefficient,
			GlobalDepositConstant:        aco.GlobalDepositConstant,
			InitPheromone:                aco.InitPheromone,
			Ants:                         aco.Ants,
			Rounds:                       aco.Rounds,
			Groups:                       aco.Groups,
		},
		Server: ServerConfig{
			BindAddress: ":8080",
		},
		Viewer: ViewerConfig{
			TickRate: 50 * time.Millisecond,
			Sound:    false,
			Solver:   "astar",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects sizes and coefficients the solvers cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Grid.Layout == "" {
		if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
			errs = append(errs, fmt.Errorf("grid: size %dx%d must be positive", c.Grid.Width, c.Grid.Height))
		}
		if c.Grid.CellSize <= 0 {
			errs = append(errs, fmt.Errorf("grid: cell_size %v must be positive", c.Grid.CellSize))
		}
	}
	if c.AStar.StepSize < 0 {
		errs = append(errs, fmt.Errorf("astar: step_size %v must not be negative", c.AStar.StepSize))
	}
	if c.AStar.MaxExpansions < 0 {
		errs = append(errs, fmt.Errorf("astar: max_expansions %d must not be negative", c.AStar.MaxExpansions))
	}

	a := c.ACO
	for name, v := range map[string]float64{
		"exploitation_chance":            a.ExploitationChance,
		"evaporation_coefficient":        a.EvaporationCoefficient,
		"global_evaporation_coefficient": a.GlobalEvaporationCoefficient,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("aco: %s %v must be within [0,1]", name, v))
		}
	}
	if a.InitPheromone <= 0 {
		errs = append(errs, fmt.Errorf("aco: init_pheromone %v must be positive", a.InitPheromone))
	}
	if a.Ants <= 0 || a.Rounds <= 0 || a.Groups <= 0 {
		errs = append(errs, fmt.Errorf("aco: ants %d, rounds %d and groups %d must be positive", a.Ants, a.Rounds, a.Groups))
	}

	if c.Server.SimplifyEpsilon < 0 {
		errs = append(errs, fmt.Errorf("server: simplify_epsilon %v must not be negative", c.Server.SimplifyEpsilon))
	}
	if c.Viewer.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("viewer: tick_rate %v must be positive", c.Viewer.TickRate))
	}
	switch c.Viewer.Solver {
	case "astar", "aco":
	default:
		errs = append(errs, fmt.Errorf("viewer: unknown solver %q", c.Viewer.Solver))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging: unknown format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// AnyAngle converts the [astar] section, resolving a zero step to cellSize.
func (c *Config) AnyAngle(cellSize float64) solve.AnyAngleConfig {
	step := c.AStar.StepSize
	if step == 0 {
		step = cellSize
	}
	return solve.AnyAngleConfig{StepSize: step, MaxExpansions: c.AStar.MaxExpansions}
}

// Colony converts the [aco] section.
func (c *Config) Colony() solve.ColonyConfig {
	a := c.ACO
	return solve.ColonyConfig{
		ExploitationChance:           a.ExploitationChance,
		Alpha:                        a.Alpha,
		Beta:                         a.Beta,
		ElicitationConstant:          a.ElicitationConstant,
		EvaporationCoefficient:       a.EvaporationCoefficient,
		DepositConstant:              a.DepositConstant,
		GlobalEvaporationCoefficient: a.GlobalEvaporationCoefficient,
		GlobalDepositConstant:        a.GlobalDepositConstant,
		InitPheromone:                a.InitPheromone,
		Ants:                         a.Ants,
		Rounds:                       a.Rounds,
		Groups:                       a.Groups,
		Seed:                         a.Seed,
	}
}

// BuildGrid loads the configured layout file, or builds an empty grid from
// the [grid] section when none is set.
func (c *Config) BuildGrid() (*grid.Layout, error) {
	if c.Grid.Layout != "" {
		return grid.LoadLayout(c.Grid.Layout)
	}
	g := grid.NewGrid(c.Grid.Width, c.Grid.Height, c.Grid.CellSize, orb.Point{c.Grid.OriginX, c.Grid.OriginY})
	if c.Grid.Border {
		g.Border()
	}
	return &grid.Layout{Grid: g}, nil
}
