// Package layout describes where things live inside the foreign process. The
// values are tied to one build of the target; a new build is a new YAML file.
package layout

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Globals struct {
	UWorld   uint64 `yaml:"u_world"`
	GNames   uint64 `yaml:"g_names"`
	GObjects uint64 `yaml:"g_objects"`
}

// NameTable describes the paged interned-name table.
type NameTable struct {
	PageSize     uint64 `yaml:"page_size"`
	EntryStride  uint64 `yaml:"entry_stride"`
	StringOffset uint64 `yaml:"string_offset"`
	MaxLength    uint64 `yaml:"max_length"`
}

type World struct {
	PersistentLevel uint64 `yaml:"persistent_level"`
	Levels          uint64 `yaml:"levels"`
	GameInstance    uint64 `yaml:"game_instance"`
	GameState       uint64 `yaml:"game_state"`
}

type Level struct {
	ActorArray uint64 `yaml:"actor_array"`
}

type LocalPlayer struct {
	LocalPlayers     uint64 `yaml:"local_players"`
	PlayerController uint64 `yaml:"player_controller"`
	Pawn             uint64 `yaml:"pawn"`
	CameraManager    uint64 `yaml:"camera_manager"`
	CameraCache      uint64 `yaml:"camera_cache"`
}

type Actor struct {
	ID                 uint64 `yaml:"id"`
	RootComponent      uint64 `yaml:"root_component"`
	RelativeLocation   uint64 `yaml:"relative_location"`
	ReplicatedMovement uint64 `yaml:"replicated_movement"`
}

type Interaction struct {
	Component           uint64 `yaml:"component"`
	CurrentInteractable uint64 `yaml:"current_interactable"`
	ParentActor         uint64 `yaml:"parent_actor"`
}

type Cannon struct {
	Projectile uint64 `yaml:"projectile"`
}

type DamageZone struct {
	DamageLevel uint64 `yaml:"damage_level"`
}

type Cooking struct {
	CookerComponent     uint64 `yaml:"cooker_component"`
	CookingState        uint64 `yaml:"cooking_state"`
	VisibleCookedExtent uint64 `yaml:"visible_cooked_extent"`
}

type Islands struct {
	DataAsset     uint64 `yaml:"data_asset"`
	IslandArray   uint64 `yaml:"island_array"`
	IslandStride  uint64 `yaml:"island_stride"`
	BoundsCenter  uint64 `yaml:"bounds_center"`
	DataEntries   uint64 `yaml:"data_entries"`
	Name          uint64 `yaml:"name"`
	WorldMapData  uint64 `yaml:"world_map_data"`
	CaptureParams uint64 `yaml:"capture_params"`
}

type TreasureMap struct {
	TexturePath   uint64 `yaml:"texture_path"`
	Marks         uint64 `yaml:"marks"`
	MarkStride    uint64 `yaml:"mark_stride"`
	MarksRotation uint64 `yaml:"marks_rotation"`
}

type Limits struct {
	MaxActors  int32 `yaml:"max_actors"`
	MaxLevels  int32 `yaml:"max_levels"`
	MaxIslands int32 `yaml:"max_islands"`
	MaxMarks   int32 `yaml:"max_marks"`
}

type Layout struct {
	Build       string      `yaml:"build"`
	Globals     Globals     `yaml:"globals"`
	Names       NameTable   `yaml:"names"`
	World       World       `yaml:"world"`
	Level       Level       `yaml:"level"`
	LocalPlayer LocalPlayer `yaml:"local_player"`
	Actor       Actor       `yaml:"actor"`
	Interaction Interaction `yaml:"interaction"`
	Cannon      Cannon      `yaml:"cannon"`
	DamageZone  DamageZone  `yaml:"damage_zone"`
	Cooking     Cooking     `yaml:"cooking"`
	Islands     Islands     `yaml:"islands"`
	TreasureMap TreasureMap `yaml:"treasure_map"`
	Limits      Limits      `yaml:"limits"`
}

// Entry is one named value of the layout, used for validation and listing.
type Entry struct {
	Name  string
	Value uint64
}

// Default returns the layout compiled into the binary.
func Default() *Layout {
	l, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded layout: %v", err))
	}
	return l
}

// Load reads a layout file. Entries the file leaves out keep their default.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseOver(Default(), data)
}

// Parse decodes and validates a complete layout document.
func Parse(data []byte) (*Layout, error) {
	return parseOver(&Layout{}, data)
}

func parseOver(l *Layout, data []byte) (*Layout, error) {
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Entries flattens the layout into dotted names.
func (l *Layout) Entries() []Entry {
	return []Entry{
		{"globals.u_world", l.Globals.UWorld},
		{"globals.g_names", l.Globals.GNames},
		{"globals.g_objects", l.Globals.GObjects},
		{"names.page_size", l.Names.PageSize},
		{"names.entry_stride", l.Names.EntryStride},
		{"names.string_offset", l.Names.StringOffset},
		{"names.max_length", l.Names.MaxLength},
		{"world.persistent_level", l.World.PersistentLevel},
		{"world.levels", l.World.Levels},
		{"world.game_instance", l.World.GameInstance},
		{"world.game_state", l.World.GameState},
		{"level.actor_array", l.Level.ActorArray},
		{"local_player.local_players", l.LocalPlayer.LocalPlayers},
		{"local_player.player_controller", l.LocalPlayer.PlayerController},
		{"local_player.pawn", l.LocalPlayer.Pawn},
		{"local_player.camera_manager", l.LocalPlayer.CameraManager},
		{"local_player.camera_cache", l.LocalPlayer.CameraCache},
		{"actor.id", l.Actor.ID},
		{"actor.root_component", l.Actor.RootComponent},
		{"actor.relative_location", l.Actor.RelativeLocation},
		{"actor.replicated_movement", l.Actor.ReplicatedMovement},
		{"interaction.component", l.Interaction.Component},
		{"interaction.current_interactable", l.Interaction.CurrentInteractable},
		{"interaction.parent_actor", l.Interaction.ParentActor},
		{"cannon.projectile", l.Cannon.Projectile},
		{"damage_zone.damage_level", l.DamageZone.DamageLevel},
		{"cooking.cooker_component", l.Cooking.CookerComponent},
		{"cooking.cooking_state", l.Cooking.CookingState},
		{"cooking.visible_cooked_extent", l.Cooking.VisibleCookedExtent},
		{"islands.data_asset", l.Islands.DataAsset},
		{"islands.island_array", l.Islands.IslandArray},
		{"islands.island_stride", l.Islands.IslandStride},
		{"islands.bounds_center", l.Islands.BoundsCenter},
		{"islands.data_entries", l.Islands.DataEntries},
		{"islands.name", l.Islands.Name},
		{"islands.world_map_data", l.Islands.WorldMapData},
		{"islands.capture_params", l.Islands.CaptureParams},
		{"treasure_map.texture_path", l.TreasureMap.TexturePath},
		{"treasure_map.marks", l.TreasureMap.Marks},
		{"treasure_map.mark_stride", l.TreasureMap.MarkStride},
		{"treasure_map.marks_rotation", l.TreasureMap.MarksRotation},
		{"limits.max_actors", uint64(max(l.Limits.MaxActors, 0))},
		{"limits.max_levels", uint64(max(l.Limits.MaxLevels, 0))},
		{"limits.max_islands", uint64(max(l.Limits.MaxIslands, 0))},
		{"limits.max_marks", uint64(max(l.Limits.MaxMarks, 0))},
	}
}

// Validate fails on the first entry that is missing. No offset in the table
// is legitimately zero.
func (l *Layout) Validate() error {
	for _, e := range l.Entries() {
		if e.Value == 0 {
			return fmt.Errorf("layout: %s is missing or zero", e.Name)
		}
	}
	if l.Names.MaxLength > 1024 {
		return fmt.Errorf("layout: names.max_length %d is unreasonably large", l.Names.MaxLength)
	}
	return nil
}

// Lookup returns the value of a dotted entry name.
func (l *Layout) Lookup(name string) (uint64, bool) {
	for _, e := range l.Entries() {
		if e.Name == name {
			return e.Value, true
		}
	}
	return 0, false
}
