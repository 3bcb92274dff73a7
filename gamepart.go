// gamepart.go - Game part table

package vm

// GamePart identifies one of the nine chapters of the game, each backed
// by its own bytecode/palettes/polygons/animations resources.
type GamePart int

const (
	PartCopyProtection GamePart = 16 + iota
	PartIntroCinematic
	PartGameplay1
	PartGameplay2
	PartGameplay3
	PartGameplay4
	PartGameplay5
	PartFinal
	PartPasswordEntry
)

// gamePartResources names the four resource ids a GamePart loads.
// animations is the optional fourth slot; zero means absent.
type gamePartResources struct {
	bytecode   ResourceId
	palettes   ResourceId
	polygons   ResourceId
	animations ResourceId
}

// gamePartTable maps every GamePart to its resource quadruple. The ids
// below are this project's own resource numbering (no on-disk archive is
// bundled with the spec), consistent with the nine-part structure spec.md
// §3/§8 describes. Deliberately kept clear of [16, 24], the GamePart id
// range itself, so a ControlResources id can never be ambiguous between
// "load this individual resource" and "schedule this game part".
var gamePartTable = map[GamePart]gamePartResources{
	PartCopyProtection: {bytecode: 0x40, palettes: 0x41, polygons: 0x42},
	PartIntroCinematic: {bytecode: 0x43, palettes: 0x44, polygons: 0x45, animations: 0x46},
	PartGameplay1:      {bytecode: 0x47, palettes: 0x48, polygons: 0x49, animations: 0x4A},
	PartGameplay2:      {bytecode: 0x4B, palettes: 0x4C, polygons: 0x4D, animations: 0x4E},
	PartGameplay3:      {bytecode: 0x4F, palettes: 0x50, polygons: 0x51, animations: 0x52},
	PartGameplay4:      {bytecode: 0x53, palettes: 0x54, polygons: 0x55, animations: 0x56},
	PartGameplay5:      {bytecode: 0x57, palettes: 0x58, polygons: 0x59, animations: 0x5A},
	PartFinal:          {bytecode: 0x5B, palettes: 0x5C, polygons: 0x5D, animations: 0x5E},
	PartPasswordEntry:  {bytecode: 0x5F, palettes: 0x60, polygons: 0x61},
}

// gamePartForId reports the GamePart named by a ControlResources id, if
// any; the second return is false for ids that address an individual
// resource (or 0, the unload-all sentinel) rather than a game part.
func gamePartForId(id ResourceId) (GamePart, bool) {
	part := GamePart(id)
	if _, ok := gamePartTable[part]; ok {
		return part, true
	}
	return 0, false
}

// allowsPasswordScreen reports whether the given part may schedule the
// password-entry part in response to a show-password-screen input, per
// spec.md §4.14 step 2: copy-protection and password-entry itself do not.
func (p GamePart) allowsPasswordScreen() bool {
	return p != PartCopyProtection && p != PartPasswordEntry
}
