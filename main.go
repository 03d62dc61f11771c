// routedoc generates an OpenAPI document from the endpoint declarations of a
// Swift web service.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/phobologic/routedoc/internal/config"
	"github.com/phobologic/routedoc/internal/graph"
	"github.com/phobologic/routedoc/internal/openapi"
	"github.com/phobologic/routedoc/internal/ranking"
	"github.com/phobologic/routedoc/internal/resolve"
	"github.com/phobologic/routedoc/internal/toon"
)

var version = "dev"

const defaultSourceDir = "Sources"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "show version and exit",
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	app := newApp(stdout, stderr)
	return app.Run(append([]string{app.Name}, reorderArgs(args)...))
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:            "routedoc",
		Usage:           "generate an OpenAPI document from Swift endpoint declarations",
		ArgsUsage:       "[dirs...]",
		Version:         version,
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		ExitErrHandler:  func(*cli.Context, error) {},
		Flags:           generateFlags(),
		Action:          generate,
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "write the OpenAPI document (default)",
				ArgsUsage: "[dirs...]",
				Flags:     generateFlags(),
				Action:    generate,
			},
			{
				Name:      "types",
				Usage:     "print the extracted types as a ranked TOON type map",
				ArgsUsage: "[dirs...]",
				Flags:     typesFlags(),
				Action:    types,
			},
			{
				Name:      "init",
				Usage:     "write a starter " + config.DefaultPath,
				ArgsUsage: "[path]",
				Flags:     initFlags(),
				Action:    runInit,
			},
		},
	}
}

func loadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "configuration file (default ./" + config.DefaultPath + " when present)"},
		&cli.StringFlag{Name: "frontend", Usage: "symbol tree source: auto, sourcekitten, tree-sitter or sidecar"},
		&cli.BoolFlag{Name: "include-tests", Usage: "also read files of test targets"},
		&cli.Int64Flag{Name: "max-file-size", Usage: "skip files larger than this many bytes"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log debug messages"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
	}
}

func generateFlags() []cli.Flag {
	return append(loadFlags(),
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json or yaml"},
		&cli.BoolFlag{Name: "keep-going", Usage: "skip endpoints that cannot be documented instead of failing"},
		&cli.BoolFlag{Name: "validate", Usage: "validate the generated document"},
		&cli.StringFlag{Name: "cache", Usage: "cache file path"},
	)
}

func typesFlags() []cli.Flag {
	return append(loadFlags(),
		&cli.IntFlag{Name: "n", Usage: "maximum number of types to include"},
		&cli.StringFlag{Name: "name", Usage: "only types whose name contains this, plus their neighbours"},
		&cli.BoolFlag{Name: "endpoints", Usage: "only endpoint types and the types they reach"},
	)
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-c": true, "--c": true,
	"-config": true, "--config": true,
	"-frontend": true, "--frontend": true,
	"-max-file-size": true, "--max-file-size": true,
	"-o": true, "--o": true,
	"-output": true, "--output": true,
	"-f": true, "--f": true,
	"-format": true, "--format": true,
	"-cache": true, "--cache": true,
	"-n": true, "--n": true,
	"-name": true, "--name": true,
}

var commandNames = map[string]bool{"generate": true, "types": true, "init": true, "help": true}

// reorderArgs moves positional arguments after all flags so the flag parser
// can see them (it stops at the first non-flag arg). A leading command name
// stays in front.
func reorderArgs(args []string) []string {
	if len(args) > 0 && commandNames[args[0]] {
		return append([]string{args[0]}, reorderArgs(args[1:])...)
	}
	var flags, positional []string
	dashes := false
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			dashes = true
			break
		}
		if len(args[i]) > 1 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	if dashes {
		flags = append(flags, "--")
	}
	return append(flags, positional...)
}

func newLogger(c *cli.Context) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case c.Bool("quiet"):
		level = zerolog.ErrorLevel
	case c.Bool("verbose"):
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: zerolog.SyncWriter(c.App.ErrWriter), NoColor: true}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// loadConfig reads --config, or the default file when it exists, and applies
// the flags that override file values. The returned path is empty when no
// file was read.
func loadConfig(c *cli.Context) (*config.Config, string, error) {
	path := c.String("config")
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultPath)
		if _, statErr := os.Stat(config.DefaultPath); statErr == nil {
			path = config.DefaultPath
		}
	}
	if err != nil {
		return nil, "", err
	}

	if c.IsSet("frontend") {
		cfg.Frontend = c.String("frontend")
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.Bool("keep-going") {
		cfg.KeepGoing = true
	}
	if c.IsSet("max-file-size") {
		cfg.MaxFileSize = c.Int64("max-file-size")
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func inputDirs(c *cli.Context) []string {
	if c.NArg() == 0 {
		return []string{defaultSourceDir}
	}
	return c.Args().Slice()
}

func generate(c *cli.Context) error {
	logger := newLogger(c)
	ctx := logger.WithContext(c.Context)

	cfg, cfgPath, err := loadConfig(c)
	if err != nil {
		return err
	}

	dirs := inputDirs(c)
	files, err := discoverFiles(dirs, c.Bool("include-tests"))
	if err != nil {
		return err
	}

	cachePath := c.String("cache")
	stamp, err := newCacheStamp(cfg, dirs, c.Bool("include-tests"))
	if err != nil {
		return err
	}
	if cachePath != "" && cacheIsFresh(cachePath, cfgPath, stamp, files) {
		data, err := os.ReadFile(cachePath)
		if err == nil {
			logger.Debug().Str("cache", cachePath).Msg("using cached document")
			return writeOutput(c, data)
		}
	}

	reg, err := loadRegistry(ctx, files, cfg)
	if err != nil {
		return err
	}

	opts, err := cfg.ResolveOptions()
	if err != nil {
		return err
	}
	opts.Logger = &logger
	doc, genErr := resolve.Generate(reg, opts)
	if doc == nil {
		return genErr
	}
	logger.Info().Int("paths", doc.Paths.Len()).Int("schemas", len(doc.Components.Schemas)).Msg("generated document")

	if c.Bool("validate") {
		if err := openapi.Validate(ctx, doc); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := openapi.Encode(&buf, doc, cfg.OutputFormat()); err != nil {
		return err
	}
	if err := writeOutput(c, buf.Bytes()); err != nil {
		return err
	}

	if cachePath != "" && genErr == nil {
		if err := writeCache(cachePath, buf.Bytes(), stamp); err != nil {
			logger.Warn().Err(err).Str("cache", cachePath).Msg("failed to write cache")
		}
	}
	return genErr
}

func writeOutput(c *cli.Context, data []byte) error {
	path := c.String("output")
	if path == "" || path == "-" {
		_, err := c.App.Writer.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func types(c *cli.Context) error {
	logger := newLogger(c)
	ctx := logger.WithContext(c.Context)

	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}

	dirs := inputDirs(c)
	files, err := discoverFiles(dirs, c.Bool("include-tests"))
	if err != nil {
		return err
	}

	reg, err := loadRegistry(ctx, files, cfg)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(dirs[0])
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	tm := graph.TypeMap(filepath.Base(root), reg, cfg.Endpoint.Marker)

	if c.Bool("endpoints") {
		tm = ranking.Endpoints(tm)
	}
	if name := c.String("name"); name != "" {
		tm = ranking.FilterByName(tm, name)
	}
	if n := c.Int("n"); n > 0 {
		tm = ranking.SelectTypes(tm, n)
	}
	if len(tm.Types) == 0 {
		return errors.New("no types matched")
	}

	_, err = fmt.Fprintln(c.App.Writer, toon.Encode(tm))
	return err
}

// cacheStamp records the effective settings a cached document was generated
// with. It is stored next to the cache file.
type cacheStamp struct {
	Version      string   `toml:"version"`
	Frontend     string   `toml:"frontend"`
	Format       string   `toml:"format"`
	KeepGoing    bool     `toml:"keep_going"`
	MaxFileSize  int64    `toml:"max_file_size"`
	IncludeTests bool     `toml:"include_tests"`
	Dirs         []string `toml:"dirs"`
}

func newCacheStamp(cfg *config.Config, dirs []string, includeTests bool) ([]byte, error) {
	var buf bytes.Buffer
	err := toml.NewEncoder(&buf).Encode(cacheStamp{
		Version:      version,
		Frontend:     cfg.Frontend,
		Format:       string(cfg.OutputFormat()),
		KeepGoing:    cfg.KeepGoing,
		MaxFileSize:  cfg.MaxFileSize,
		IncludeTests: includeTests,
		Dirs:         dirs,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding cache stamp: %w", err)
	}
	return buf.Bytes(), nil
}

func stampPath(cachePath string) string { return cachePath + ".stamp" }

func writeCache(cachePath string, data, stamp []byte) error {
	if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		return err
	}
	return os.WriteFile(stampPath(cachePath), stamp, 0o644)
}

// cacheIsFresh reports whether the cache file was generated with the same
// settings and is newer than every input file and the configuration file.
func cacheIsFresh(cachePath, configPath string, stamp []byte, files []sourceFile) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	saved, err := os.ReadFile(stampPath(cachePath))
	if err != nil || !bytes.Equal(saved, stamp) {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	paths := make([]string, 0, len(files)+2)
	for _, f := range files {
		paths = append(paths, f.abs)
		if f.sidecar != "" {
			paths = append(paths, f.sidecar)
		}
	}
	if configPath != "" {
		paths = append(paths, configPath)
	}
	return !slices.ContainsFunc(paths, func(p string) bool {
		fi, err := os.Stat(p)
		return err != nil || !fi.ModTime().Before(cacheMtime)
	})
}
