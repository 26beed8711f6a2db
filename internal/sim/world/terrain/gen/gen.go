package gen

import "voxelinteract.ai/internal/sim/geom"

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func Hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// lattice returns a deterministic value in [0,1] for a grid corner.
func lattice(seed int64, gx, gz int) float64 {
	return float64(Hash2(seed, gx, gz)%1024) / 1023
}

func smooth(t float64) float64 { return t * t * (3 - 2*t) }

// HeightAt returns the surface height (top solid y) of a value-noise height
// field: base + amplitude * noise, sampled on a regionSize lattice.
func HeightAt(seed int64, x, z, base, amplitude, regionSize int) int {
	if regionSize <= 0 {
		regionSize = 1
	}
	if amplitude <= 0 {
		return base
	}
	gx := geom.FloorDiv(x, regionSize)
	gz := geom.FloorDiv(z, regionSize)
	fx := smooth(float64(geom.Mod(x, regionSize)) / float64(regionSize))
	fz := smooth(float64(geom.Mod(z, regionSize)) / float64(regionSize))

	v00 := lattice(seed, gx, gz)
	v10 := lattice(seed, gx+1, gz)
	v01 := lattice(seed, gx, gz+1)
	v11 := lattice(seed, gx+1, gz+1)
	top := v00 + (v10-v00)*fx
	bot := v01 + (v11-v01)*fx
	n := top + (bot-top)*fz

	return base + int(n*float64(amplitude)+0.5)
}
