// repository_fs.go - Filesystem-backed resource repository

package vm

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileRepository reads resources from bank files (BANK01 .. BANK0D) rooted
// at a single directory. The root is resolved once at construction time
// and every subsequent bank file path is joined against it and verified to
// still live under it, so a malformed bank-id can never escape the data
// directory.
type FileRepository struct {
	root        string
	descriptors []ResourceDescriptor
}

// NewFileRepository parses the manifest file at manifestPath and returns a
// repository that reads bank files from dataDir.
func NewFileRepository(dataDir, manifestPath string) (*FileRepository, error) {
	root, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	descriptors, err := ParseManifest(raw)
	if err != nil {
		return nil, err
	}
	return &FileRepository{root: root, descriptors: descriptors}, nil
}

func (f *FileRepository) ResourceDescriptors() []ResourceDescriptor {
	return f.descriptors
}

// ReadResource opens the descriptor's bank file, seeks to its offset, and
// reads exactly CompressedSize bytes into dest.
func (f *FileRepository) ReadResource(descriptor ResourceDescriptor, dest []byte) ([]byte, error) {
	if len(dest) < int(descriptor.CompressedSize) {
		return nil, ErrBufferTooSmall
	}
	path, err := f.bankPath(descriptor.BankFileName())
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryFailure, err)
	}
	defer file.Close()

	buf := dest[:descriptor.CompressedSize]
	n, err := file.ReadAt(buf, int64(descriptor.Offset))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryFailure, err)
	}
	if n != len(buf) {
		return nil, ErrTruncatedData
	}
	return buf, nil
}

// bankPath joins name onto the repository root and rejects any result that
// would escape it (e.g. via a crafted bank file name).
func (f *FileRepository) bankPath(name string) (string, error) {
	joined := filepath.Join(f.root, name)
	rel, err := filepath.Rel(f.root, joined)
	if err != nil || rel == ".." || (len(rel) >= 3 && rel[:3] == "../") {
		return "", fmt.Errorf("%w: bank path escapes data directory", ErrRepositoryFailure)
	}
	return joined, nil
}
