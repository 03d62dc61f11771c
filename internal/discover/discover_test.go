package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverSwiftFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "App/Routes.swift", "struct GetUser {}")
	writeFile(t, dir, "Models/User.swift", "struct User {}")
	// Non-Swift file should be ignored
	writeFile(t, dir, "Package.resolved", "{}")
	// Hidden file should be ignored
	writeFile(t, dir, ".Secret.swift", "struct Secret {}")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(entries), paths)
	}

	// Should be sorted
	if entries[0].Path != filepath.Join("App", "Routes.swift") {
		t.Errorf("entry 0: got %q", entries[0].Path)
	}
	if entries[1].Path != filepath.Join("Models", "User.swift") {
		t.Errorf("entry 1: got %q", entries[1].Path)
	}

	for _, e := range entries {
		if e.Language != "swift" {
			t.Errorf("entry %q: language = %q, want swift", e.Path, e.Language)
		}
		if e.Size == 0 {
			t.Errorf("entry %q: size not recorded", e.Path)
		}
		if e.Sidecar {
			t.Errorf("entry %q: unexpected sidecar", e.Path)
		}
	}
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.swift", "")
	writeFile(t, dir, ".build/checkouts/vapor/Request.swift", "")
	writeFile(t, dir, "Pods/Alamofire/Session.swift", "")
	writeFile(t, dir, ".hidden/Secret.swift", "")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Path != "main.swift" {
		t.Errorf("expected main.swift, got %q", entries[0].Path)
	}
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, ".gitignore", "Generated/\n")
	writeFile(t, dir, "User.swift", "struct User {}")
	writeFile(t, dir, "Generated/Mocks.swift", "struct Mock {}")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "User.swift" {
		t.Fatalf("expected only User.swift, got %v", entries)
	}
}

func TestDiscoverSidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "User.swift", "struct User {}")
	writeFile(t, dir, "User.swift.structure.json", "{}")
	writeFile(t, dir, "Order.swift", "struct Order {}")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Path != "Order.swift" || entries[0].Sidecar {
		t.Errorf("entry 0: %+v", entries[0])
	}
	if entries[1].Path != "User.swift" || !entries[1].Sidecar {
		t.Errorf("entry 1: %+v", entries[1])
	}
}

func TestDiscoverTests(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "Sources/App/User.swift", "")
	writeFile(t, dir, "Tests/AppTests/UserTests.swift", "")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected tests to be skipped, got %v", entries)
	}

	entries, err = Files(dir, Options{IncludeTests: true})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected tests to be included, got %v", entries)
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "Real.swift", "")

	// Create symlink
	err := os.Symlink(filepath.Join(dir, "Real.swift"), filepath.Join(dir, "Link.swift"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry (no symlink), got %d", len(entries))
	}
	if entries[0].Path != "Real.swift" {
		t.Errorf("expected Real.swift, got %q", entries[0].Path)
	}
}

func TestIsTestFile(t *testing.T) {
	t.Parallel()
	cases := []struct {
		path string
		want bool
	}{
		// Test directory components
		{"Tests/AppTests/RoutesTests.swift", true},
		{"Tests/AppTests/Helpers.swift", true},
		{"AppTests/Helpers.swift", true},
		{"Sources/App/Mocks/FakeDB.swift", true},
		// Filename patterns
		{"UserTests.swift", true},
		{"UserTest.swift", true},
		{"UserSpec.swift", true},
		// Production files
		{"Sources/App/routes.swift", false},
		{"Sources/App/Models/User.swift", false},
		{"Sources/App/Testimonial.swift", false},
		{"Sources/Contest/Entry.swift", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()
			got := IsTestFile(tc.path)
			if got != tc.want {
				t.Errorf("IsTestFile(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
