package store

import "voxelinteract.ai/internal/sim/geom"

// Packed voxel layout: bits 0-15 block id, 16-19 face rotation, 20-23 y segment.
const (
	idMask    = 0xffff
	rotShift  = 16
	rotMask   = 0xf
	yRotShift = 20
	yRotMask  = 0xf
)

func PackVoxel(id uint16, rot geom.Rotation) uint32 {
	v := uint32(id)
	v |= (uint32(rot.Face) & rotMask) << rotShift
	v |= (uint32(geom.Mod(rot.YSegment, geom.YRotSegments)) & yRotMask) << yRotShift
	return v
}

func VoxelID(v uint32) uint16 { return uint16(v & idMask) }

func VoxelRotation(v uint32) geom.Rotation {
	return geom.Rotation{
		Face:     geom.FaceRotation((v >> rotShift) & rotMask),
		YSegment: int((v >> yRotShift) & yRotMask),
	}
}
