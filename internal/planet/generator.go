package planet

import "math/rand/v2"

// Depth bands: relative depth [0,1] is split into eight equal bands, each
// capping the ore tier a tile may roll.
var bandMaxTier = [8]int{3, 4, 5, 6, 7, 8, 9, 11}

const minTier = 3

type weight struct {
	t   TileType
	pct int
}

// tierTable is a two-level percentage table. The first roll picks the common
// branch (below common), the ore branch (below common+ore) or Empty; the
// second roll picks a type inside the branch. Branch weights sum to 100.
type tierTable struct {
	common  int
	ore     int
	commons []weight
	ores    []weight
}

var tiers = map[int]tierTable{
	3: {
		common: 85, ore: 5,
		commons: []weight{{Dirt, 70}, {Rock, 25}, {Gas, 5}},
		ores:    []weight{{Coal, 70}, {Copper, 30}},
	},
	4: {
		common: 82, ore: 8,
		commons: []weight{{Dirt, 65}, {Rock, 28}, {Gas, 5}, {Skeleton, 2}},
		ores:    []weight{{Coal, 55}, {Copper, 30}, {Tin, 15}},
	},
	5: {
		common: 78, ore: 12,
		commons: []weight{{Dirt, 58}, {Rock, 32}, {Gas, 6}, {Skeleton, 2}, {Fossile, 2}},
		ores:    []weight{{Coal, 40}, {Copper, 25}, {Tin, 20}, {Iron, 15}},
	},
	6: {
		common: 75, ore: 15,
		commons: []weight{{Dirt, 50}, {Rock, 36}, {Gas, 6}, {Lava, 3}, {Skeleton, 2}, {Fossile, 2}, {TreasureChest, 1}},
		ores:    []weight{{Coal, 30}, {Copper, 20}, {Tin, 15}, {Iron, 20}, {Lead, 15}},
	},
	7: {
		common: 72, ore: 18,
		commons: []weight{{Dirt, 42}, {Rock, 40}, {Gas, 7}, {Lava, 5}, {Skeleton, 2}, {Fossile, 3}, {TreasureChest, 1}},
		ores:    []weight{{Coal, 20}, {Copper, 15}, {Tin, 10}, {Iron, 20}, {Lead, 15}, {Silver, 12}, {Gold, 8}},
	},
	8: {
		common: 70, ore: 21,
		commons: []weight{{Dirt, 35}, {Rock, 43}, {Gas, 7}, {Lava, 7}, {Fossile, 4}, {Skeleton, 2}, {TreasureChest, 1}, {BedRock, 1}},
		ores:    []weight{{Coal, 15}, {Iron, 20}, {Lead, 15}, {Silver, 17}, {Gold, 13}, {Platinum, 10}, {Cobalt, 10}},
	},
	9: {
		common: 68, ore: 24,
		commons: []weight{{Dirt, 28}, {Rock, 45}, {Gas, 8}, {Lava, 9}, {Fossile, 4}, {Skeleton, 2}, {TreasureChest, 2}, {BedRock, 2}},
		ores:    []weight{{Iron, 12}, {Silver, 15}, {Gold, 15}, {Platinum, 14}, {Cobalt, 12}, {Titanium, 12}, {Emerald, 10}, {Ruby, 10}},
	},
	10: {
		common: 66, ore: 27,
		commons: []weight{{Dirt, 22}, {Rock, 46}, {Gas, 8}, {Lava, 11}, {Fossile, 4}, {Skeleton, 2}, {TreasureChest, 3}, {BedRock, 3}, {MeteoriteShard, 1}},
		ores:    []weight{{Silver, 10}, {Gold, 14}, {Platinum, 14}, {Cobalt, 12}, {Titanium, 14}, {Emerald, 12}, {Ruby, 12}, {Diamond, 8}, {Uranium, 4}},
	},
	11: {
		common: 64, ore: 30,
		commons: []weight{{Dirt, 15}, {Rock, 47}, {Gas, 9}, {Lava, 13}, {Fossile, 4}, {Skeleton, 2}, {TreasureChest, 3}, {BedRock, 5}, {MeteoriteShard, 2}},
		ores:    []weight{{Gold, 12}, {Platinum, 14}, {Cobalt, 10}, {Titanium, 14}, {Emerald, 13}, {Ruby, 13}, {Diamond, 14}, {Uranium, 10}},
	},
}

func pick(ws []weight, roll int) TileType {
	acc := 0
	for _, w := range ws {
		acc += w.pct
		if roll < acc {
			return w.t
		}
	}
	return Empty
}

// MaxTier returns the highest ore tier reachable at relative depth.
func MaxTier(depth float64) int {
	band := int(depth * float64(len(bandMaxTier)))
	if band < 0 {
		band = 0
	}
	if band >= len(bandMaxTier) {
		band = len(bandMaxTier) - 1
	}
	return bandMaxTier[band]
}

// TierType resolves a tier and its two percentage rolls to a tile type.
// Unknown tiers resolve to Empty.
func TierType(tier, branchRoll, typeRoll int) TileType {
	tt, ok := tiers[tier]
	if !ok {
		return Empty
	}
	switch {
	case branchRoll < tt.common:
		return pick(tt.commons, typeRoll)
	case branchRoll < tt.common+tt.ore:
		return pick(tt.ores, typeRoll)
	default:
		return Empty
	}
}

// Roll draws a tile type for relative depth from r. It always consumes
// exactly three draws: the tier die, the branch roll and the type roll.
func Roll(depth float64, r *rand.Rand) TileType {
	tier := r.IntN(MaxTier(depth) + 1)
	if tier < minTier {
		tier = minTier
	}
	branch := r.IntN(100)
	typ := r.IntN(100)
	return TierType(tier, branch, typ)
}

// Generator assigns tile types. Each tile's random stream is seeded from the
// planet seed and the tile's global coordinates, so a chunk regenerates to the
// same tiles whatever order chunks are generated in.
//
// A Generator is not safe for concurrent use.
type Generator struct {
	seed uint64
	src  *rand.PCG
	rng  *rand.Rand
}

func NewGenerator(seed uint64) *Generator {
	src := rand.NewPCG(seed, 0)
	return &Generator{seed: seed, src: src, rng: rand.New(src)}
}

func (g *Generator) Seed() uint64 { return g.seed }

// TileType generates the type of tile in chunk for a planet of planetDim.
// The surface chunk row is always Empty.
func (g *Generator) TileType(chunk ChunkIndex, tile TileIndex, chunkDim, planetDim Dim) TileType {
	if chunk.Row == 0 {
		return Empty
	}
	gr := chunk.Row*chunkDim.Row + tile.Row
	gc := chunk.Col*chunkDim.Col + tile.Col
	g.src.Seed(mix64(g.seed^(gr*0x9e3779b97f4a7c15)), mix64(g.seed^(gc*0xbf58476d1ce4e5b9)))
	depth := float64(chunk.Row) / float64(planetDim.Row)
	return Roll(depth, g.rng)
}

// flipped decides sprite mirroring from the tile's coordinates; it draws
// nothing from the tile's random stream.
func (g *Generator) flipped(chunk ChunkIndex, tile TileIndex, chunkDim Dim) bool {
	gr := chunk.Row*chunkDim.Row + tile.Row
	gc := chunk.Col*chunkDim.Col + tile.Col
	return mix64(g.seed^(gr*0xc2b2ae3d27d4eb4f)^(gc*0x165667b19e3779f9))&1 == 1
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
