package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phobologic/routedoc/internal/config"
)

func writeTestFile(t *testing.T, root, rel, content string) {
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

const endpointsSwift = `import Vapor

struct GetUser: APIRoutingEndpoint {
    static var method: APIRoutingHTTPMethod = .get
    static var path: String = "/users/:id"

    struct Parameters: Codable {
        let id: UUID
    }

    static func run(context: UserContext, parameters: Parameters, query: Void, body: Void) throws -> EventLoopFuture<User> {
        fatalError()
    }
}
`

const modelsSwift = `struct User: Codable {
    let id: UUID
    var name: String?
    var role: Role
}

enum Role: String, Codable {
    case admin
    case member
}

struct Unused {
    var note: String
}
`

func createSampleRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "Endpoints.swift", endpointsSwift)
	writeTestFile(t, dir, "Models/User.swift", modelsSwift)
	return dir
}

func TestRunGenerate(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		`"openapi": "3.0.0"`,
		`"/users/{id}"`,
		`"get"`,
		`"$ref": "#/components/schemas/User"`,
		`"Role"`,
		`"format": "uuid"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Unused") {
		t.Error("unreferenced type should not be documented")
	}
}

func TestRunGenerateCommand(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"generate", dir, "--validate", "-q"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), `"/users/{id}"`) {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("--quiet should suppress info logs, got:\n%s", stderr.String())
	}
}

func TestRunYAMLToFile(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	outPath := filepath.Join(t.TempDir(), "api.yaml")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-f", "yaml", "-o", outPath, dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty with -o, got:\n%s", stdout.String())
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "openapi: 3.0.0") {
		t.Errorf("expected YAML document, got:\n%s", data)
	}
}

func TestRunConfig(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	cfgPath := filepath.Join(t.TempDir(), "routedoc.toml")
	writeTestFile(t, filepath.Dir(cfgPath), "routedoc.toml", `
[info]
title = "Users API"
version = "2.1"

[[servers]]
url = "https://api.example.com"

[security.schemes.bearer]
type = "http"
scheme = "bearer"

[security.contexts]
UserContext = "bearer"
`)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-c", cfgPath, "--validate", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{`"Users API"`, `"2.1"`, `"https://api.example.com"`, `"securitySchemes"`, `"security"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestRunConfigMissing(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"-c", filepath.Join(dir, "nope.toml"), dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected missing config error, got %v", err)
	}
}

func TestRunBadFormat(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--format", "xml", dir}, &stdout, &stderr); err == nil {
		t.Error("expected error for unsupported format")
	}
}

const brokenSwift = `struct Broken: APIRoutingEndpoint {
    static var method: APIRoutingHTTPMethod = .post
    static var path: String = "/broken"

    static func run(context: Void, parameters: Void, query: Void, body: Void) throws -> EventLoopFuture<Missing> {
        fatalError()
    }
}
`

func TestRunMissingType(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	writeTestFile(t, dir, "Broken.swift", brokenSwift)

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "Missing") {
		t.Fatalf("expected error naming the missing type, got %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("no document should be written on failure, got:\n%s", stdout.String())
	}
}

func TestRunKeepGoing(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	writeTestFile(t, dir, "Broken.swift", brokenSwift)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--keep-going", dir}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected the skipped endpoint to be reported")
	}
	out := stdout.String()
	if !strings.Contains(out, `"/users/{id}"`) {
		t.Errorf("partial document missing resolvable endpoint:\n%s", out)
	}
	if strings.Contains(out, `"/broken"`) {
		t.Errorf("broken endpoint should be skipped:\n%s", out)
	}
	if !strings.Contains(stderr.String(), "Broken") {
		t.Errorf("expected a warning naming the endpoint, got:\n%s", stderr.String())
	}
}

func TestRunDuplicateTypeLastWins(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "Endpoints.swift", endpointsSwift)
	writeTestFile(t, dir, "A/User.swift", "struct User {\n    var first: String\n}\n")
	writeTestFile(t, dir, "B/User.swift", "struct User {\n    var second: String\n}\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-v", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, `"second"`) || strings.Contains(out, `"first"`) {
		t.Errorf("expected the later declaration of User:\n%s", out)
	}
	if !strings.Contains(stderr.String(), "duplicate type name") {
		t.Errorf("expected a debug log for the duplicate, got:\n%s", stderr.String())
	}
}

func TestRunMaxFileSize(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--max-file-size", "10", dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "size limit") {
		t.Errorf("expected size limit error, got %v", err)
	}
	if !strings.Contains(stderr.String(), "too large") {
		t.Errorf("expected skip warnings, got:\n%s", stderr.String())
	}
}

func TestRunNoFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "README.md", "# nothing here\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "no Swift files") {
		t.Errorf("expected no files error, got %v", err)
	}
}

func TestRunNotDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "file.swift", "struct A {}\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{filepath.Join(dir, "file.swift")}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("expected not a directory error, got %v", err)
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-V"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "routedoc version dev") {
		t.Errorf("unexpected version output: %q", stdout.String())
	}
}

func TestRunCache(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	cachePath := filepath.Join(t.TempDir(), "api.cache")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--cache", cachePath, dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	data, err := os.ReadFile(cachePath)
	if err != nil {
		t.Fatalf("cache not written: %v", err)
	}
	if string(data) != stdout.String() {
		t.Error("cache should hold the emitted document")
	}

	// A fresh cache is served as is.
	if err := os.WriteFile(cachePath, []byte("cached\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(cachePath, future, future); err != nil {
		t.Fatal(err)
	}

	stdout.Reset()
	if err := run([]string{"--cache", cachePath, dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout.String() != "cached\n" {
		t.Errorf("expected cached output, got:\n%s", stdout.String())
	}

	// Different output settings regenerate even though the cache is newer.
	stdout.Reset()
	if err := run([]string{"--cache", cachePath, "-f", "yaml", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run -f yaml: %v", err)
	}
	if !strings.Contains(stdout.String(), "openapi: 3.0.0") {
		t.Errorf("expected a YAML document, got:\n%s", stdout.String())
	}
	data, err = os.ReadFile(cachePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != stdout.String() {
		t.Error("cache should hold the YAML document")
	}

	stdout.Reset()
	if err := run([]string{"--cache", cachePath, "--keep-going", "-f", "yaml", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run --keep-going: %v", err)
	}
	stdout.Reset()
	if err := run([]string{"--cache", cachePath, dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), `"openapi": "3.0.0"`) {
		t.Errorf("expected a JSON document after switching back, got:\n%s", stdout.String())
	}
}

func TestCacheIsFresh(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	files, err := discoverFiles([]string{dir}, false)
	if err != nil {
		t.Fatal(err)
	}
	cachePath := filepath.Join(t.TempDir(), "cache")
	cfgPath := filepath.Join(dir, "routedoc.toml")
	writeTestFile(t, dir, "routedoc.toml", "")

	cfg := config.Default()
	stamp, err := newCacheStamp(cfg, []string{dir}, false)
	if err != nil {
		t.Fatal(err)
	}

	if cacheIsFresh(cachePath, cfgPath, stamp, files) {
		t.Error("missing cache should not be fresh")
	}

	if err := writeCache(cachePath, []byte("x"), stamp); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	past := now.Add(-time.Hour)
	for _, f := range files {
		if err := os.Chtimes(f.abs, past, past); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Chtimes(cfgPath, past, past); err != nil {
		t.Fatal(err)
	}
	if !cacheIsFresh(cachePath, cfgPath, stamp, files) {
		t.Error("cache newer than every input should be fresh")
	}

	cfg.Format = "yaml"
	yamlStamp, err := newCacheStamp(cfg, []string{dir}, false)
	if err != nil {
		t.Fatal(err)
	}
	if cacheIsFresh(cachePath, cfgPath, yamlStamp, files) {
		t.Error("a different output format should invalidate the cache")
	}
	testsStamp, err := newCacheStamp(config.Default(), []string{dir}, true)
	if err != nil {
		t.Fatal(err)
	}
	if cacheIsFresh(cachePath, cfgPath, testsStamp, files) {
		t.Error("including test files should invalidate the cache")
	}
	if err := os.Remove(stampPath(cachePath)); err != nil {
		t.Fatal(err)
	}
	if cacheIsFresh(cachePath, cfgPath, stamp, files) {
		t.Error("a cache without a stamp should not be fresh")
	}
	if err := os.WriteFile(stampPath(cachePath), stamp, 0o644); err != nil {
		t.Fatal(err)
	}

	future := now.Add(time.Hour)
	if err := os.Chtimes(cfgPath, future, future); err != nil {
		t.Fatal(err)
	}
	if cacheIsFresh(cachePath, cfgPath, stamp, files) {
		t.Error("a newer config file should invalidate the cache")
	}
}

func TestDiscoverFilesSorted(t *testing.T) {
	t.Parallel()
	a := t.TempDir()
	b := t.TempDir()
	writeTestFile(t, a, "Z.swift", "struct Z {}\n")
	writeTestFile(t, b, "A.swift", "struct A {}\n")
	writeTestFile(t, b, "A.swift.structure.json", `{"key.substructure": []}`)

	files, err := discoverFiles([]string{a, b}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i-1].path > files[i].path {
			t.Errorf("files not sorted: %s before %s", files[i-1].path, files[i].path)
		}
	}
	for _, f := range files {
		if strings.HasSuffix(f.path, "A.swift") && f.sidecar == "" {
			t.Error("sidecar not detected")
		}
	}
}

func TestFilterBySize(t *testing.T) {
	t.Parallel()
	files := []sourceFile{
		{path: "small.swift", size: 10},
		{path: "big.swift", size: 1000},
	}
	kept := filterBySize(context.Background(), files, 100)
	if len(kept) != 1 || kept[0].path != "small.swift" {
		t.Errorf("kept = %+v", kept)
	}
}

func TestRunTypes(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"types", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.HasPrefix(out, "root: ") {
		t.Errorf("missing root header:\n%s", out)
	}
	for _, want := range []string{"types[5]", "GetUser", "Unused", "cases[2]", "references["} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestRunTypesFilters(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"types", "--endpoints", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	if out := stdout.String(); strings.Contains(out, "Unused") || !strings.Contains(out, "Role") {
		t.Errorf("--endpoints should keep only reachable types:\n%s", out)
	}

	stdout.Reset()
	if err := run([]string{"types", dir, "-n", "1"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "types[1]") {
		t.Errorf("-n 1 should keep one type:\n%s", stdout.String())
	}

	stdout.Reset()
	err := run([]string{"types", "--name", "Nothing", dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "no types matched") {
		t.Errorf("expected no match error, got %v", err)
	}
}

func TestReorderArgs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"positional first", []string{"Sources", "-o", "api.json"}, []string{"-o", "api.json", "Sources"}},
		{"command kept in front", []string{"types", "Sources", "-n", "3"}, []string{"types", "-n", "3", "Sources"}},
		{"bool flag", []string{"Sources", "--validate"}, []string{"--validate", "Sources"}},
		{"double dash", []string{"-q", "--", "-odd"}, []string{"-q", "--", "-odd"}},
	}
	for _, tt := range tests {
		got := reorderArgs(tt.args)
		if strings.Join(got, " ") != strings.Join(tt.want, " ") {
			t.Errorf("%s: reorderArgs(%v) = %v, want %v", tt.name, tt.args, got, tt.want)
		}
	}
}
