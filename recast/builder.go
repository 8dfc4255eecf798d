package recast

import (
	"fmt"

	"github.com/gorustyt/gonavmesh/common/logger"
)

// / Checks the voxel configuration for values the pipeline cannot work with.
func (cfg *RcConfig) Validate() error {
	switch {
	case cfg.Cs <= 0 || cfg.Ch <= 0:
		return fmt.Errorf("%w: cell size %v height %v", ErrInvalidConfig, cfg.Cs, cfg.Ch)
	case cfg.Width <= 0 || cfg.Height <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidConfig, cfg.Width, cfg.Height)
	case cfg.WalkableSlopeAngle < 0 || cfg.WalkableSlopeAngle >= 90:
		return fmt.Errorf("%w: walkable slope %v", ErrInvalidConfig, cfg.WalkableSlopeAngle)
	case cfg.WalkableHeight < 3:
		return fmt.Errorf("%w: walkable height %d", ErrInvalidConfig, cfg.WalkableHeight)
	case cfg.WalkableClimb < 0 || cfg.WalkableRadius < 0 || cfg.BorderSize < 0:
		return fmt.Errorf("%w: negative climb, radius or border", ErrInvalidConfig)
	case cfg.MaxVertsPerPoly < 3 || cfg.MaxVertsPerPoly > 6:
		return fmt.Errorf("%w: max verts per poly %d", ErrInvalidConfig, cfg.MaxVertsPerPoly)
	}
	return nil
}

// RcBuildCompactTile runs the voxel stages of a build: rasterize, filter,
// compact and erode. tris holds 9 floats per triangle.
func RcBuildCompactTile(cfg *RcConfig, tris []float32) (*RcCompactHeightfield, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(tris) < 9 {
		return nil, ErrEmptyGeometry
	}
	hf := RcCreateHeightfield(cfg.Width, cfg.Height, cfg.Bmin[:], cfg.Bmax[:], cfg.Cs, cfg.Ch)
	areas := RcMarkWalkableTriangles(cfg.WalkableSlopeAngle, tris)
	if skipped := RcRasterizeTriangles(tris, areas, hf, cfg.WalkableClimb); skipped > 0 {
		logger.Debug("RcBuildCompactTile: %d triangles skipped", skipped)
	}

	RcFilterLowHangingWalkableObstacles(cfg.WalkableClimb, hf)
	RcFilterLedgeSpans(cfg.WalkableHeight, cfg.WalkableClimb, hf)
	RcFilterWalkableLowHeightSpans(cfg.WalkableHeight, hf)

	chf, err := RcBuildCompactHeightfield(cfg.WalkableHeight, cfg.WalkableClimb, hf)
	if err != nil {
		return nil, err
	}
	chf.BorderSize = cfg.BorderSize
	if err := RcErodeWalkableArea(cfg.WalkableRadius, chf); err != nil {
		return nil, err
	}
	return chf, nil
}

// RcBuildTileMesh partitions chf into regions and turns them into polygon and
// detail meshes. The region ids of chf are overwritten.
func RcBuildTileMesh(cfg *RcConfig, chf *RcCompactHeightfield, partitioner RegionPartitioner) (*RcPolyMesh, *RcPolyMeshDetail, error) {
	if partitioner == nil {
		partitioner = WatershedPartitioner{}
	}
	if err := partitioner.BuildRegions(chf, cfg.BorderSize, cfg.MinRegionArea, cfg.MergeRegionArea); err != nil {
		return nil, nil, fmt.Errorf("%s regions: %w", partitioner.Name(), err)
	}
	cset := RcBuildContours(chf, cfg.MaxSimplificationError, cfg.MaxEdgeLen, RC_CONTOUR_TESS_WALL_EDGES)
	pmesh, err := RcBuildPolyMesh(cset, cfg.MaxVertsPerPoly)
	if err != nil {
		return nil, nil, err
	}
	dmesh, err := RcBuildPolyMeshDetail(pmesh, chf, cfg.DetailSampleDist, cfg.DetailSampleMaxError)
	if err != nil {
		return nil, nil, err
	}
	return pmesh, dmesh, nil
}
