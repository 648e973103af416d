package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

var ErrKeyConflict = errors.New("config: key bound to more than one action")

// Action is an input action the editor and simulator react to.
type Action string

const (
	ActionClear       Action = "clear"
	ActionPlaceNodes  Action = "place_nodes"
	ActionPlaceRods   Action = "place_rods"
	ActionDelete      Action = "delete"
	ActionPick        Action = "pick"
	ActionMoveUp      Action = "move_up"
	ActionMoveDown    Action = "move_down"
	ActionMoveLeft    Action = "move_left"
	ActionMoveRight   Action = "move_right"
	ActionZoomIn      Action = "zoom_in"
	ActionZoomOut     Action = "zoom_out"
	ActionSwitchScene Action = "switch_scene"
	ActionNewCraft    Action = "new_craft"
	ActionCycleRod    Action = "cycle_rod"
	ActionToggleFixed Action = "toggle_fixed"
	ActionDedupe      Action = "dedupe"
	ActionUndo        Action = "undo"
	ActionRedo        Action = "redo"
	ActionSave        Action = "save"
	ActionQuit        Action = "quit"
)

// KeyMap binds each action to one key, written the way bubbletea
// reports it ("a", "backspace", "ctrl+z"). "space" is accepted for " ".
type KeyMap struct {
	Clear       string `toml:"clear"`
	PlaceNodes  string `toml:"place_nodes"`
	PlaceRods   string `toml:"place_rods"`
	Delete      string `toml:"delete"`
	Pick        string `toml:"pick"`
	MoveUp      string `toml:"move_up"`
	MoveDown    string `toml:"move_down"`
	MoveLeft    string `toml:"move_left"`
	MoveRight   string `toml:"move_right"`
	ZoomIn      string `toml:"zoom_in"`
	ZoomOut     string `toml:"zoom_out"`
	SwitchScene string `toml:"switch_scene"`
	NewCraft    string `toml:"new_craft"`
	CycleRod    string `toml:"cycle_rod"`
	ToggleFixed string `toml:"toggle_fixed"`
	Dedupe      string `toml:"dedupe"`
	Undo        string `toml:"undo"`
	Redo        string `toml:"redo"`
	Save        string `toml:"save"`
	Quit        string `toml:"quit"`
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Clear:       "c",
		PlaceNodes:  "n",
		PlaceRods:   "r",
		Delete:      "backspace",
		Pick:        "enter",
		MoveUp:      "up",
		MoveDown:    "down",
		MoveLeft:    "left",
		MoveRight:   "right",
		ZoomIn:      "z",
		ZoomOut:     "x",
		SwitchScene: "space",
		NewCraft:    "s",
		CycleRod:    "k",
		ToggleFixed: "f",
		Dedupe:      "d",
		Undo:        "u",
		Redo:        "ctrl+r",
		Save:        "ctrl+s",
		Quit:        "q",
	}
}

// LoadKeyMap overlays the bindings in path on the defaults. A missing
// file yields the defaults without error.
func LoadKeyMap(path string) (KeyMap, error) {
	km := DefaultKeyMap()
	if path == "" {
		return km, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return km, nil
		}
		return km, err
	}
	if err := toml.Unmarshal(data, &km); err != nil {
		return DefaultKeyMap(), fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := km.Bindings(); err != nil {
		return DefaultKeyMap(), fmt.Errorf("%s: %w", path, err)
	}
	return km, nil
}

// SaveKeyMap writes km as TOML.
func SaveKeyMap(path string, km KeyMap) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(km)
}

func (k KeyMap) actions() map[Action]string {
	return map[Action]string{
		ActionClear:       k.Clear,
		ActionPlaceNodes:  k.PlaceNodes,
		ActionPlaceRods:   k.PlaceRods,
		ActionDelete:      k.Delete,
		ActionPick:        k.Pick,
		ActionMoveUp:      k.MoveUp,
		ActionMoveDown:    k.MoveDown,
		ActionMoveLeft:    k.MoveLeft,
		ActionMoveRight:   k.MoveRight,
		ActionZoomIn:      k.ZoomIn,
		ActionZoomOut:     k.ZoomOut,
		ActionSwitchScene: k.SwitchScene,
		ActionNewCraft:    k.NewCraft,
		ActionCycleRod:    k.CycleRod,
		ActionToggleFixed: k.ToggleFixed,
		ActionDedupe:      k.Dedupe,
		ActionUndo:        k.Undo,
		ActionRedo:        k.Redo,
		ActionSave:        k.Save,
		ActionQuit:        k.Quit,
	}
}

// Bindings inverts the map to key -> action. Unbound actions are left
// out; a key used twice is an error.
func (k KeyMap) Bindings() (map[string]Action, error) {
	out := make(map[string]Action)
	for action, key := range k.actions() {
		if key == "" {
			continue
		}
		key = normalizeKey(key)
		if other, dup := out[key]; dup {
			return nil, fmt.Errorf("%w: %q used by %s and %s", ErrKeyConflict, key, other, action)
		}
		out[key] = action
	}
	return out, nil
}

// Key returns the binding for a, as bubbletea would report it.
func (k KeyMap) Key(a Action) string {
	return normalizeKey(k.actions()[a])
}

func normalizeKey(key string) string {
	if key == "space" {
		return " "
	}
	return key
}
