// Package discover finds Swift source files under a package directory.
package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/routedoc/internal/lang"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path     string // Relative to the discovery root
	Language string
	Size     int64
	// Sidecar is set when a structure document sits next to the file.
	Sidecar bool
}

// Options narrows discovery.
type Options struct {
	// IncludeTests keeps files that IsTestFile reports as tests.
	IncludeTests bool
}

var skipDirs = map[string]struct{}{
	".build":       {},
	".swiftpm":     {},
	"build":        {},
	"Build":        {},
	"DerivedData":  {},
	"Pods":         {},
	"Carthage":     {},
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
}

// Files discovers Swift source files under root, sorted by path.
func Files(root string, opts Options) ([]FileEntry, error) {
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if gitFiles != nil {
			if _, ok := gitFiles[filepath.ToSlash(rel)]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		langName := lang.ForExtension(filepath.Ext(name))
		if langName == "" {
			return nil
		}
		if !opts.IncludeTests && IsTestFile(rel) {
			return nil
		}

		entry := FileEntry{Path: rel, Language: langName}
		if info, err := d.Info(); err == nil {
			entry.Size = info.Size()
		}
		// Structure documents are often generated and ignored, so look
		// for them directly rather than through the listing.
		if suffix := lang.Languages[langName].StructureSuffix; suffix != "" {
			if _, err := os.Stat(path + suffix); err == nil {
				entry.Sidecar = true
			}
		}

		results = append(results, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

// testDirs are directory names that hold test targets.
var testDirs = map[string]struct{}{
	"Tests":     {},
	"tests":     {},
	"UITests":   {},
	"Fixtures":  {},
	"Mocks":     {},
	"TestUtils": {},
}

// IsTestFile reports whether path belongs to a test target, either by a
// directory component or by an XCTest-style file name.
func IsTestFile(path string) bool {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for _, dir := range parts[:len(parts)-1] {
		if _, ok := testDirs[dir]; ok {
			return true
		}
		if strings.HasSuffix(dir, "Tests") {
			return true
		}
	}
	base := strings.TrimSuffix(parts[len(parts)-1], filepath.Ext(path))
	return strings.HasSuffix(base, "Tests") || strings.HasSuffix(base, "Test") || strings.HasSuffix(base, "Spec")
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	if _, err := os.Stat(gitDir); err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
