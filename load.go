package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/phobologic/routedoc/internal/config"
	"github.com/phobologic/routedoc/internal/discover"
	"github.com/phobologic/routedoc/internal/extract"
	"github.com/phobologic/routedoc/internal/lang"
	"github.com/phobologic/routedoc/internal/model"
	"github.com/phobologic/routedoc/internal/parse"
)

// sourceFile is one discovered Swift file.
type sourceFile struct {
	path    string // as recorded on the extracted types
	abs     string
	size    int64
	sidecar string // structure document next to the file, if any
}

// discoverFiles lists the Swift files under every dir, sorted by path.
func discoverFiles(dirs []string, includeTests bool) ([]sourceFile, error) {
	var files []sourceFile
	for _, dir := range dirs {
		root, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving root: %w", err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("root path: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s: not a directory", dir)
		}

		entries, err := discover.Files(root, discover.Options{IncludeTests: includeTests})
		if err != nil {
			return nil, fmt.Errorf("discovering files: %w", err)
		}
		for _, e := range entries {
			f := sourceFile{
				path: filepath.ToSlash(filepath.Join(dir, e.Path)),
				abs:  filepath.Join(root, e.Path),
				size: e.Size,
			}
			if e.Sidecar {
				f.sidecar = f.abs + lang.Languages[e.Language].StructureSuffix
			}
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no Swift files found")
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].path < files[j].path
	})
	return files, nil
}

// loadRegistry parses files and merges their types into one registry. Later
// files win over earlier ones on a name clash.
func loadRegistry(ctx context.Context, files []sourceFile, cfg *config.Config) (*model.Registry, error) {
	frontend, err := parse.ParseFrontend(cfg.Frontend)
	if err != nil {
		return nil, err
	}

	files = filterBySize(ctx, files, cfg.MaxFileSize)
	if len(files) == 0 {
		return nil, errors.New("no parseable files found (all exceeded size limit)")
	}

	parsed := parseFilesConcurrent(ctx, files, frontend)

	log := zerolog.Ctx(ctx)
	reg := model.NewRegistry()
	loaded := 0
	for i, types := range parsed {
		if types == nil {
			continue
		}
		loaded++
		for _, name := range reg.Merge(types) {
			log.Debug().Str("type", name).Str("file", files[i].path).Msg("duplicate type name, later declaration wins")
		}
	}
	if loaded == 0 {
		return nil, errors.New("no files could be parsed")
	}
	log.Info().Int("files", loaded).Int("types", reg.Len()).Msg("loaded types")
	return reg, nil
}

func filterBySize(ctx context.Context, files []sourceFile, maxSize int64) []sourceFile {
	var kept []sourceFile
	for _, f := range files {
		if f.size > maxSize {
			zerolog.Ctx(ctx).Warn().Str("file", f.path).Int64("limit", maxSize).Msg("skipped, file too large")
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// parseFilesConcurrent returns the types of each file, indexed like files.
// Files that could not be read or parsed have a nil entry.
func parseFilesConcurrent(ctx context.Context, files []sourceFile, frontend parse.Frontend) [][]*model.TypeDescription {
	type result struct {
		index int
		types []*model.TypeDescription
	}

	numWorkers := min(runtime.GOMAXPROCS(0), len(files))

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup
	log := zerolog.Ctx(ctx)

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parser
			p := parse.NewParser(frontend)
			defer p.Close()

			for idx := range work {
				f := files[idx]
				source, err := os.ReadFile(f.abs)
				if err != nil {
					log.Warn().Err(err).Str("file", f.path).Msg("failed to read")
					continue
				}
				root, err := p.Parse(ctx, f.abs, source)
				if err != nil {
					log.Warn().Err(err).Str("file", f.path).Msg("failed to parse")
					continue
				}
				types := extract.Types(f.path, source, root)
				if types == nil {
					types = []*model.TypeDescription{}
				}
				results <- result{index: idx, types: types}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([][]*model.TypeDescription, len(files))
	for r := range results {
		indexed[r.index] = r.types
	}
	return indexed
}
