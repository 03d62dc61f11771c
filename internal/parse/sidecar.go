package parse

import (
	"fmt"
	"os"

	"github.com/phobologic/routedoc/internal/symbol"
)

// ReadSidecar decodes the SourceKitten structure document at path. A missing
// file yields an error wrapping os.ErrNotExist.
func ReadSidecar(path string) (*symbol.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := symbol.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}
