package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/gorustyt/gonavmesh/common/logger"
	"github.com/gorustyt/gonavmesh/recast"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid value")

// BuildSettings holds the build options in world units.
type BuildSettings struct {
	CellSize               float32 `yaml:"cell_size"`
	CellHeight             float32 `yaml:"cell_height"`
	WalkableSlopeAngle     float32 `yaml:"walkable_slope_angle"`
	AgentHeight            float32 `yaml:"agent_height"`
	AgentRadius            float32 `yaml:"agent_radius"`
	AgentMaxClimb          float32 `yaml:"agent_max_climb"`
	MaxEdgeLen             float32 `yaml:"max_edge_len"`
	MaxSimplificationError float32 `yaml:"max_simplification_error"`
	MinRegionSize          float32 `yaml:"min_region_area"`   // cells along one side
	MergeRegionSize        float32 `yaml:"merge_region_area"` // cells along one side
	MaxVertsPerPoly        int     `yaml:"max_verts_per_poly"`
	DetailSampleDist       float32 `yaml:"detail_sample_dist"`
	DetailSampleMaxError   float32 `yaml:"detail_sample_max_error"`
	TileSize               int     `yaml:"tile_size"`
	Partition              string  `yaml:"partition"`
	MaxObstacles           int     `yaml:"max_obstacles"`
}

// QuerySettings bound the path queries.
type QuerySettings struct {
	HalfExtents     [3]float32 `yaml:"half_extents"`
	MaxNodes        int        `yaml:"max_nodes"`
	MaxPath         int        `yaml:"max_path"`
	MaxStraightPath int        `yaml:"max_straight_path"`
}

type Config struct {
	Build  BuildSettings `yaml:"build"`
	Query  QuerySettings `yaml:"query"`
	Logger logger.Config `yaml:"logger"`
}

// Default returns the classic solo-mesh settings for a human sized agent.
func Default() *Config {
	return &Config{
		Build: BuildSettings{
			CellSize:               0.3,
			CellHeight:             0.2,
			WalkableSlopeAngle:     45,
			AgentHeight:            2.0,
			AgentRadius:            0.6,
			AgentMaxClimb:          0.9,
			MaxEdgeLen:             12,
			MaxSimplificationError: 1.3,
			MinRegionSize:          8,
			MergeRegionSize:        20,
			MaxVertsPerPoly:        6,
			DetailSampleDist:       6,
			DetailSampleMaxError:   1,
			TileSize:               48,
			Partition:              recast.PartitionWatershed,
			MaxObstacles:           128,
		},
		Query: QuerySettings{
			HalfExtents:     [3]float32{2, 4, 2},
			MaxNodes:        2048,
			MaxPath:         256,
			MaxStraightPath: 256,
		},
		Logger: logger.Config{
			AppName:     "navmesh",
			Level:       "INFO",
			FileMaxSize: logger.DefaultFileMaxSize,
			MaxBackups:  logger.DefaultMaxBackups,
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	b := &c.Build
	switch {
	case b.CellSize <= 0:
		return fmt.Errorf("%w: cell_size %v", ErrInvalid, b.CellSize)
	case b.CellHeight <= 0:
		return fmt.Errorf("%w: cell_height %v", ErrInvalid, b.CellHeight)
	case b.WalkableSlopeAngle < 0 || b.WalkableSlopeAngle >= 90:
		return fmt.Errorf("%w: walkable_slope_angle %v", ErrInvalid, b.WalkableSlopeAngle)
	case b.AgentHeight < 3*b.CellHeight:
		return fmt.Errorf("%w: agent_height %v below three cells", ErrInvalid, b.AgentHeight)
	case b.AgentRadius < 0 || b.AgentMaxClimb < 0:
		return fmt.Errorf("%w: agent radius %v climb %v", ErrInvalid, b.AgentRadius, b.AgentMaxClimb)
	case b.MaxEdgeLen < 0 || b.MaxSimplificationError < 0:
		return fmt.Errorf("%w: edge length %v error %v", ErrInvalid, b.MaxEdgeLen, b.MaxSimplificationError)
	case b.MinRegionSize < 0 || b.MergeRegionSize < 0:
		return fmt.Errorf("%w: region sizes %v %v", ErrInvalid, b.MinRegionSize, b.MergeRegionSize)
	case b.MaxVertsPerPoly < 3 || b.MaxVertsPerPoly > 6:
		return fmt.Errorf("%w: max_verts_per_poly %d", ErrInvalid, b.MaxVertsPerPoly)
	case b.DetailSampleDist < 0 || b.DetailSampleMaxError < 0:
		return fmt.Errorf("%w: detail sample %v error %v", ErrInvalid, b.DetailSampleDist, b.DetailSampleMaxError)
	case b.TileSize <= 0:
		return fmt.Errorf("%w: tile_size %d", ErrInvalid, b.TileSize)
	case b.Partition != recast.PartitionWatershed && b.Partition != recast.PartitionMonotone:
		return fmt.Errorf("%w: partition %q", ErrInvalid, b.Partition)
	case b.MaxObstacles <= 0:
		return fmt.Errorf("%w: max_obstacles %d", ErrInvalid, b.MaxObstacles)
	}
	q := &c.Query
	switch {
	case q.HalfExtents[0] <= 0 || q.HalfExtents[1] <= 0 || q.HalfExtents[2] <= 0:
		return fmt.Errorf("%w: half_extents %v", ErrInvalid, q.HalfExtents)
	case q.MaxNodes <= 0 || q.MaxNodes > 0xffff:
		return fmt.Errorf("%w: max_nodes %d", ErrInvalid, q.MaxNodes)
	case q.MaxPath <= 0 || q.MaxStraightPath < 2:
		return fmt.Errorf("%w: max_path %d max_straight_path %d", ErrInvalid, q.MaxPath, q.MaxStraightPath)
	}
	if _, err := logger.ParseLogLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Partitioner returns the region partitioner named by the settings.
func (b *BuildSettings) Partitioner() (recast.RegionPartitioner, error) {
	return recast.PartitionerByName(b.Partition)
}

// ToRcConfig converts the settings to voxel units for a build over bmin..bmax.
func (b *BuildSettings) ToRcConfig(bmin, bmax [3]float32) *recast.RcConfig {
	cfg := &recast.RcConfig{
		Cs:                     b.CellSize,
		Ch:                     b.CellHeight,
		WalkableSlopeAngle:     b.WalkableSlopeAngle,
		WalkableHeight:         int(math.Ceil(float64(b.AgentHeight / b.CellHeight))),
		WalkableClimb:          int(math.Floor(float64(b.AgentMaxClimb / b.CellHeight))),
		WalkableRadius:         int(math.Ceil(float64(b.AgentRadius / b.CellSize))),
		MaxEdgeLen:             int(b.MaxEdgeLen / b.CellSize),
		MaxSimplificationError: b.MaxSimplificationError,
		MinRegionArea:          int(b.MinRegionSize * b.MinRegionSize),
		MergeRegionArea:        int(b.MergeRegionSize * b.MergeRegionSize),
		MaxVertsPerPoly:        b.MaxVertsPerPoly,
		TileSize:               b.TileSize,
		DetailSampleMaxError:   b.CellHeight * b.DetailSampleMaxError,
		Bmin:                   bmin,
		Bmax:                   bmax,
	}
	if b.DetailSampleDist >= 0.9 {
		cfg.DetailSampleDist = b.CellSize * b.DetailSampleDist
	}
	cfg.Width, cfg.Height = recast.RcCalcGridSize(bmin[:], bmax[:], b.CellSize)
	return cfg
}

// TileWorldSize is the edge length of one tile in world units.
func (b *BuildSettings) TileWorldSize() float32 {
	return float32(b.TileSize) * b.CellSize
}
