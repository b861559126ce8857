package protection

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Chunk is an immutable reference to one volume file of a split archive.
// Sequence position is implied by the zero-padded volume suffix, so sorting
// by name sorts by position.
type Chunk struct {
	Archive   string
	Increment string
	Name      string
	Path      string
}

// ChunkPrefix returns the filename prefix shared by every volume of one
// archive increment, e.g. "260801 FULL documents.7z.".
func ChunkPrefix(archive, increment string) string {
	return increment + " FULL " + archive + ".7z."
}

// BaseName returns the recovery base name used when an archive is protected
// as a single direct group, e.g. "260801 FULL documents".
func BaseName(archive, increment string) string {
	return increment + " FULL " + archive
}

// GroupName returns the staging directory and recovery base name for a
// protection group covering the half-open chunk index range [start, end).
func GroupName(archive, increment string, start, end int) string {
	return fmt.Sprintf("%s FULL %s %04d-%04d", increment, archive, start, end)
}

// OverallBaseName returns the recovery base name for the archive-wide layer.
func OverallBaseName(archive, increment string) string {
	return increment + " " + archive + " OVERALL"
}

// DiscoverChunks lists dir and returns the chunks belonging to the archive
// and increment in volume order. ReadDir returns entries sorted by filename,
// which is sequence order for the zero-padded suffixes. An empty result is
// not an error.
func DiscoverChunks(dir, archive, increment string) ([]Chunk, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve chunk directory: %w", err)
	}

	prefix := ChunkPrefix(archive, increment)
	var chunks []Chunk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		chunks = append(chunks, Chunk{
			Archive:   archive,
			Increment: increment,
			Name:      name,
			Path:      filepath.Join(absDir, name),
		})
	}
	return chunks, nil
}
