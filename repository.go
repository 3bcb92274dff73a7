// repository.go - Resource repository interface and resource reader

package vm

// ResourceRepository is the capability the machine consumes to obtain
// resource descriptors and their compressed bytes, per spec.md §6. A bank
// file / filesystem implementation lives in repository_fs.go; tests use
// the in-memory fake below.
type ResourceRepository interface {
	// ResourceDescriptors returns the fixed, dense, id-ordered descriptor
	// table parsed from the resource manifest.
	ResourceDescriptors() []ResourceDescriptor

	// ReadResource reads the compressed bytes named by descriptor into
	// dest, which must be at least descriptor.CompressedSize bytes, and
	// returns the slice of dest actually filled.
	ReadResource(descriptor ResourceDescriptor, dest []byte) ([]byte, error)
}

// ReadAndDecompress reads a resource's compressed bytes from repo and, if
// the resource is compressed, decodes them into dest. Compressed bytes are
// read into a separate scratch buffer of descriptor.CompressedSize bytes;
// decoding does not happen in place within dest. The returned slice has
// length descriptor.UncompressedSize. Per spec.md §4.3.
func ReadAndDecompress(repo ResourceRepository, descriptor ResourceDescriptor, dest []byte) ([]byte, error) {
	if len(dest) < int(descriptor.UncompressedSize) {
		return nil, ErrBufferTooSmall
	}
	dest = dest[:descriptor.UncompressedSize]

	if descriptor.Uncompressed() {
		return repo.ReadResource(descriptor, dest)
	}

	compressed := make([]byte, descriptor.CompressedSize)
	filled, err := repo.ReadResource(descriptor, compressed)
	if err != nil {
		return nil, err
	}
	if len(filled) != int(descriptor.CompressedSize) {
		return nil, ErrTruncatedData
	}
	if err := DecodeRLE(filled, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

// ReadResourceById resolves id to its descriptor via repo's table and
// reads+decompresses it into dest. Fails with ErrInvalidResourceId if id
// is out of range.
func ReadResourceById(repo ResourceRepository, id ResourceId, dest []byte) ([]byte, error) {
	descriptors := repo.ResourceDescriptors()
	if int(id) >= len(descriptors) {
		return nil, ErrInvalidResourceId
	}
	return ReadAndDecompress(repo, descriptors[id], dest)
}

// MemoryRepository is an in-memory ResourceRepository, primarily useful
// for tests: each descriptor's compressed bytes are supplied directly
// rather than read from bank files on disk.
type MemoryRepository struct {
	descriptors []ResourceDescriptor
	blobs       map[ResourceId][]byte
}

// NewMemoryRepository builds a repository from parallel descriptor and
// compressed-blob slices (blobs[i] backs descriptors[i]).
func NewMemoryRepository(descriptors []ResourceDescriptor, blobs [][]byte) *MemoryRepository {
	m := &MemoryRepository{descriptors: descriptors, blobs: make(map[ResourceId][]byte, len(blobs))}
	for i, b := range blobs {
		m.blobs[ResourceId(i)] = b
	}
	return m
}

func (m *MemoryRepository) ResourceDescriptors() []ResourceDescriptor {
	return m.descriptors
}

func (m *MemoryRepository) ReadResource(descriptor ResourceDescriptor, dest []byte) ([]byte, error) {
	for id, d := range m.descriptors {
		if d == descriptor {
			blob := m.blobs[ResourceId(id)]
			if len(dest) < len(blob) {
				return nil, ErrBufferTooSmall
			}
			n := copy(dest, blob)
			if n < len(blob) {
				return nil, ErrTruncatedData
			}
			return dest[:n], nil
		}
	}
	return nil, ErrRepositoryFailure
}
