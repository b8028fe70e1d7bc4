package block

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// State identifies a block state. The numeric value is the stable on-disk
// encoding; the properties behind it live in a Registry.
type State uint16

const (
	Air State = iota
	Stone
	GrassBlock
	Dirt
	Cobblestone
	OakPlanks
	Bedrock
	Sand
	Gravel
	OakLog
	OakLeaves
	Glass
	CoalOre
	IronOre
	GoldOre
	DiamondOre
	Water
	ShortGrass
)

// MaxState is the widest state id the on-disk encoding accepts.
const MaxState = 1<<16 - 1

var (
	white = mgl32.Vec4{1, 1, 1, 1}
	green = mgl32.Vec4{0, 0.5, 0, 1}
)

// Info describes the properties of one block state.
type Info struct {
	ID          State
	Name        string
	DisplayName string
	Hardness    float64
	// Transparent blocks never hide the faces of their neighbours.
	Transparent bool
	// Tint is used as given; set it to white for an untinted block.
	Tint mgl32.Vec4
}

var table = []Info{
	{ID: Air, Name: "air", DisplayName: "Air", Transparent: true, Tint: white},
	{ID: Stone, Name: "stone", DisplayName: "Stone", Hardness: 1.5, Tint: white},
	{ID: GrassBlock, Name: "grass_block", DisplayName: "Grass Block", Hardness: 0.6, Tint: white},
	{ID: Dirt, Name: "dirt", DisplayName: "Dirt", Hardness: 0.5, Tint: white},
	{ID: Cobblestone, Name: "cobblestone", DisplayName: "Cobblestone", Hardness: 2, Tint: white},
	{ID: OakPlanks, Name: "oak_planks", DisplayName: "Oak Planks", Hardness: 2, Tint: white},
	{ID: Bedrock, Name: "bedrock", DisplayName: "Bedrock", Hardness: -1, Tint: white},
	{ID: Sand, Name: "sand", DisplayName: "Sand", Hardness: 0.5, Tint: white},
	{ID: Gravel, Name: "gravel", DisplayName: "Gravel", Hardness: 0.6, Tint: white},
	{ID: OakLog, Name: "oak_log", DisplayName: "Oak Log", Hardness: 2, Tint: white},
	{ID: OakLeaves, Name: "oak_leaves", DisplayName: "Oak Leaves", Hardness: 0.2, Transparent: true, Tint: green},
	{ID: Glass, Name: "glass", DisplayName: "Glass", Hardness: 0.3, Transparent: true, Tint: white},
	{ID: CoalOre, Name: "coal_ore", DisplayName: "Coal Ore", Hardness: 3, Tint: white},
	{ID: IronOre, Name: "iron_ore", DisplayName: "Iron Ore", Hardness: 3, Tint: white},
	{ID: GoldOre, Name: "gold_ore", DisplayName: "Gold Ore", Hardness: 3, Tint: white},
	{ID: DiamondOre, Name: "diamond_ore", DisplayName: "Diamond Ore", Hardness: 3, Tint: white},
	{ID: Water, Name: "water", DisplayName: "Water", Hardness: 100, Transparent: true, Tint: white},
	{ID: ShortGrass, Name: "short_grass", DisplayName: "Short Grass", Transparent: true, Tint: white},
}

var defaultRegistry = NewRegistry(table)

// Default returns the registry of built-in blocks.
func Default() *Registry {
	return defaultRegistry
}

// ID returns the raw numeric encoding of the state.
func (s State) ID() uint16 {
	return uint16(s)
}

// IsAir reports whether s is the empty block.
func (s State) IsAir() bool {
	return s == Air
}

// CanOcclude reports whether s fully hides the faces of adjacent blocks.
// States missing from the default registry are treated as solid.
func (s State) CanOcclude() bool {
	return defaultRegistry.CanOcclude(s)
}

// Name returns the registry name of s, or a numeric placeholder.
func (s State) Name() string {
	if info, ok := defaultRegistry.ByID(s); ok {
		return info.Name
	}
	return fmt.Sprintf("unknown_%d", uint16(s))
}

func (s State) String() string {
	return s.Name()
}
