package planet

import "fmt"

// TileType is the material of a tile. It never changes once a tile exists.
type TileType uint8

const (
	Empty TileType = iota
	Dirt
	BedRock
	Rock
	Gas
	Lava
	TreasureChest
	Skeleton
	Fossile
	MeteoriteShard

	// Ores, roughly by rarity.
	Coal
	Copper
	Tin
	Iron
	Lead
	Silver
	Gold
	Platinum
	Cobalt
	Titanium
	Emerald
	Ruby
	Diamond
	Uranium

	tileTypeCount
)

var tileTypeNames = [tileTypeCount]string{
	Empty:          "Empty",
	Dirt:           "Dirt",
	BedRock:        "BedRock",
	Rock:           "Rock",
	Gas:            "Gas",
	Lava:           "Lava",
	TreasureChest:  "TreasureChest",
	Skeleton:       "Skeleton",
	Fossile:        "Fossile",
	MeteoriteShard: "MeteoriteShard",
	Coal:           "Coal",
	Copper:         "Copper",
	Tin:            "Tin",
	Iron:           "Iron",
	Lead:           "Lead",
	Silver:         "Silver",
	Gold:           "Gold",
	Platinum:       "Platinum",
	Cobalt:         "Cobalt",
	Titanium:       "Titanium",
	Emerald:        "Emerald",
	Ruby:           "Ruby",
	Diamond:        "Diamond",
	Uranium:        "Uranium",
}

var tileTypeByName = func() map[string]TileType {
	m := make(map[string]TileType, tileTypeCount)
	for i, n := range tileTypeNames {
		m[n] = TileType(i)
	}
	return m
}()

func (t TileType) String() string {
	if t < tileTypeCount {
		return tileTypeNames[t]
	}
	return fmt.Sprintf("TileType(%d)", uint8(t))
}

// Valid reports whether t is one of the declared variants.
func (t TileType) Valid() bool { return t < tileTypeCount }

// IsOre reports whether t is a mineable ore.
func (t TileType) IsOre() bool { return t >= Coal && t < tileTypeCount }

// flippable types get a mirrored sprite on half their tiles.
func (t TileType) flippable() bool { return t == Dirt || t == Rock }

// ParseTileType is the inverse of String.
func ParseTileType(name string) (TileType, error) {
	t, ok := tileTypeByName[name]
	if !ok {
		return Empty, fmt.Errorf("unknown tile type %q", name)
	}
	return t, nil
}

// AllTileTypes lists every variant in declaration order.
func AllTileTypes() []TileType {
	out := make([]TileType, tileTypeCount)
	for i := range out {
		out[i] = TileType(i)
	}
	return out
}
