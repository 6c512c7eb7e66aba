package bundler

import (
	"encoding/json"
	"path/filepath"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// metafile mirrors the subset of the esbuild metafile format we consume:
// the set of input paths that went into the bundle.
type metafile struct {
	Inputs map[string]struct {
		Bytes int64 `json:"bytes"`
	} `json:"inputs"`
}

// parseMetafile extracts the input paths from an esbuild metafile.
// Paths in the metafile are relative to the bundler's working directory;
// they are resolved against baseDir and returned sorted.
func parseMetafile(data []byte, baseDir string) ([]string, error) {
	var meta metafile
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, zerr.Wrap(err, domain.ErrMetafileParseFailed.Error())
	}

	paths := make([]string, 0, len(meta.Inputs))
	for input := range meta.Inputs {
		if !filepath.IsAbs(input) {
			input = filepath.Join(baseDir, input)
		}
		paths = append(paths, input)
	}
	slices.Sort(paths)
	return paths, nil
}
