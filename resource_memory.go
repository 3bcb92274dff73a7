// resource_memory.go - Resource memory owner

package vm

// LoadedResource is returned by LoadIndividualResource to tell the caller
// whether the freshly loaded buffer is a bitmap meant to be blitted
// immediately, or an audio sample retained by id for future playback.
type LoadedResource struct {
	Kind ResourceKind
	Data []byte
}

// GamePartResources are the four resources resolved for the current game
// part; Animations is nil when the part has no fourth resource.
type GamePartResources struct {
	Bytecode   []byte
	Palettes   []byte
	Polygons   []byte
	Animations []byte
}

// ResourceMemory owns every currently-resident resource buffer: the
// individually-loaded resources addressed by id, plus the four well-known
// slots backing the current game part. Per spec.md §4.4, at most one live
// buffer exists per id at any time.
type ResourceMemory struct {
	repo ResourceRepository

	individual map[ResourceId][]byte
	gamePart   *GamePartResources
}

// NewResourceMemory constructs an empty resource memory backed by repo.
func NewResourceMemory(repo ResourceRepository) *ResourceMemory {
	return &ResourceMemory{repo: repo, individual: make(map[ResourceId][]byte)}
}

// LoadIndividualResource loads and decompresses the resource named by id.
// Bitmap resources are NOT retained here; the caller is expected to blit
// the returned buffer into video buffer 0 immediately. Audio resources are
// retained and returned to future audio instructions by id.
func (m *ResourceMemory) LoadIndividualResource(id ResourceId) (LoadedResource, error) {
	descriptors := m.repo.ResourceDescriptors()
	if int(id) >= len(descriptors) {
		return LoadedResource{}, ErrInvalidResourceId
	}
	descriptor := descriptors[id]

	buf := make([]byte, descriptor.UncompressedSize)
	data, err := ReadAndDecompress(m.repo, descriptor, buf)
	if err != nil {
		return LoadedResource{}, err
	}

	if descriptor.Kind == ResourceKindBitmap {
		return LoadedResource{Kind: descriptor.Kind, Data: data}, nil
	}

	m.individual[id] = data
	return LoadedResource{Kind: descriptor.Kind, Data: data}, nil
}

// LoadGamePart evicts all individual resources and the previous part's
// well-known slots, then loads the four resources for part.
func (m *ResourceMemory) LoadGamePart(part GamePart) (GamePartResources, error) {
	entry, ok := gamePartTable[part]
	if !ok {
		return GamePartResources{}, ErrInvalidResourceId
	}

	bytecode, err := m.loadWellKnown(entry.bytecode)
	if err != nil {
		return GamePartResources{}, err
	}
	palettes, err := m.loadWellKnown(entry.palettes)
	if err != nil {
		return GamePartResources{}, err
	}
	polygons, err := m.loadWellKnown(entry.polygons)
	if err != nil {
		return GamePartResources{}, err
	}
	var animations []byte
	if entry.animations != 0 {
		animations, err = m.loadWellKnown(entry.animations)
		if err != nil {
			return GamePartResources{}, err
		}
	}

	m.individual = make(map[ResourceId][]byte)
	resources := GamePartResources{Bytecode: bytecode, Palettes: palettes, Polygons: polygons, Animations: animations}
	m.gamePart = &resources
	return resources, nil
}

func (m *ResourceMemory) loadWellKnown(id ResourceId) ([]byte, error) {
	descriptors := m.repo.ResourceDescriptors()
	if int(id) >= len(descriptors) {
		return nil, ErrInvalidResourceId
	}
	descriptor := descriptors[id]
	buf := make([]byte, descriptor.UncompressedSize)
	return ReadAndDecompress(m.repo, descriptor, buf)
}

// UnloadAllResources evicts all individually-loaded resources. Game-part
// slots are untouched.
func (m *ResourceMemory) UnloadAllResources() {
	m.individual = make(map[ResourceId][]byte)
}

// ResourceLocation returns the current buffer for id, if resident.
func (m *ResourceMemory) ResourceLocation(id ResourceId) ([]byte, bool) {
	data, ok := m.individual[id]
	return data, ok
}

// CurrentGamePart returns the active game part's resources, if a part has
// been loaded.
func (m *ResourceMemory) CurrentGamePart() (GamePartResources, bool) {
	if m.gamePart == nil {
		return GamePartResources{}, false
	}
	return *m.gamePart, true
}
