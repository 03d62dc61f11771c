package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/phobologic/routedoc/internal/config"
	"github.com/phobologic/routedoc/internal/resolve"
)

func initFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "dry-run", Usage: "print what would be written without creating the file"},
		&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
	}
}

// runInit implements the `routedoc init` subcommand, which writes a starter
// configuration file. path defaults to ./routedoc.toml.
func runInit(c *cli.Context) error {
	content := starterConfig()

	if c.Bool("dry-run") {
		_, _ = fmt.Fprint(c.App.Writer, content)
		return nil
	}

	path := config.DefaultPath
	if c.NArg() > 0 {
		path = c.Args().First()
	}

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(c.App.ErrWriter, "wrote %s\n", path)
	return nil
}

// starterConfig returns a configuration file spelling out every default,
// with the optional sections commented out.
func starterConfig() string {
	return `# routedoc configuration. Every key is optional.

# Where symbol trees come from: auto, sourcekitten, tree-sitter or sidecar.
# auto reads <file>.swift.structure.json when present and parses the source
# with tree-sitter otherwise.
frontend = "auto"

# Output format: json or yaml.
format = "json"

# Document the endpoints that resolve and report the rest instead of failing.
keep_going = false

# Skip source files larger than this many bytes.
max_file_size = ` + fmt.Sprint(config.DefaultMaxFileSize) + `

[info]
title = "My API"
version = "1.0"
description = "My API Document"

# [[servers]]
# url = "https://api.example.com"

[endpoint]
marker = "` + resolve.DefaultMarker + `"
handler = "` + resolve.DefaultHandler + `"
async_prefix = "` + resolve.DefaultAsyncPrefix + `"
async_suffix = "` + resolve.DefaultAsyncSuffix + `"

# Security schemes are copied into components.securitySchemes. Contexts map
# the type of a handler's context argument to the scheme it requires.
#
# [security.schemes.bearer]
# type = "http"
# scheme = "bearer"
#
# [security.contexts]
# UserContext = "bearer"
`
}
