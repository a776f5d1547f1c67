package settings

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/oomph-ac/sightline/game"
	"github.com/oomph-ac/sightline/targetfinding"
	"github.com/pelletier/go-toml"
)

// Settings contains everything that can be configured about aiming and placing.
type Settings struct {
	Aim struct {
		// Range is the maximum distance to a visible point.
		Range float64
		// WallsRange is the maximum distance to a point that is hidden behind blocks. A value of 0
		// means hidden points are never accepted.
		WallsRange float64
		// ProjectionPoints is the maximum amount of points sampled on a box per query.
		ProjectionPoints int
		// PrioritizeVisible makes a visible point always win over a point behind a wall.
		PrioritizeVisible bool
	}
	Placement struct {
		AimMode                 targetfinding.AimMode
		ConsiderFacingAwayFaces bool
		EyeHeight               float64
		// Range is the maximum distance along the crosshair to a clicked block.
		Range float64
		// WallsRange is the distance within which blocks may be clicked through walls.
		WallsRange float64
	}
	Support struct {
		Enabled    bool
		Depth      int
		DelayTicks uint64
	}
	World struct {
		// ChunkRadius is the radius in chunks around the actor that blocks are kept in.
		ChunkRadius int32
	}
	Sentry struct {
		DSN string
	}
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	s := Settings{}
	s.Aim.Range = 4.2
	s.Aim.WallsRange = 0
	s.Aim.ProjectionPoints = 256
	s.Aim.PrioritizeVisible = true

	s.Placement.AimMode = targetfinding.AimStabilized
	s.Placement.EyeHeight = game.DefaultPlayerHeightOffset
	s.Placement.Range = 4.5
	s.Placement.WallsRange = 0

	s.Support.Enabled = true
	s.Support.Depth = 4
	s.Support.DelayTicks = 10

	s.World.ChunkRadius = 8
	return s
}

// Validate returns an error if any of the settings is out of its allowed range.
func (s Settings) Validate() error {
	switch {
	case s.Aim.Range <= 0:
		return fmt.Errorf("aim range must be positive, got %v", s.Aim.Range)
	case s.Aim.WallsRange < 0:
		return fmt.Errorf("aim walls range must not be negative, got %v", s.Aim.WallsRange)
	case s.Aim.ProjectionPoints <= 0:
		return fmt.Errorf("projection points must be positive, got %v", s.Aim.ProjectionPoints)
	case s.Placement.EyeHeight <= 0:
		return fmt.Errorf("eye height must be positive, got %v", s.Placement.EyeHeight)
	case s.Placement.Range <= 0:
		return fmt.Errorf("placement range must be positive, got %v", s.Placement.Range)
	case s.Placement.WallsRange < 0:
		return fmt.Errorf("placement walls range must not be negative, got %v", s.Placement.WallsRange)
	case s.World.ChunkRadius <= 0:
		return fmt.Errorf("chunk radius must be positive, got %v", s.World.ChunkRadius)
	case s.Support.Depth < 1 || s.Support.Depth > 12:
		return fmt.Errorf("support depth must be within [1, 12], got %v", s.Support.Depth)
	}
	if !slices.Contains(targetfinding.AimModes, s.Placement.AimMode) {
		return fmt.Errorf("unknown aim mode %q", s.Placement.AimMode)
	}
	return nil
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return errors.New("settings file already exists")
	}
	data, err := toml.Marshal(DefaultSettings())
	if err != nil {
		return fmt.Errorf("failed encoding default settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed creating settings file: %w", err)
	}
	return nil
}

// Load will load the settings from your settings file, and return an error if the file does not exist
// or holds invalid settings.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error reading config: %w", err)
	}

	settings := DefaultSettings()
	if err = toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err = settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return settings, nil
}
