package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/ruiner/log"
)

// resolve returns a [kong.ConfigurationLoader] that parses YAML (or JSON)
// config files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// The document is converted as follows:
//   - The top level is a mapping from flag names to values
//   - Flag names may use underscores in place of hyphens
//     (e.g., "log_level" for "log-level")
//   - Nested mappings join their keys with hyphens, so
//     "log: {level: debug}" sets "log-level"
//   - Sequences set repeatable flags
//
// Example config file:
//
//	log:
//	  level: debug
//	  pretty: false
//	dir: [~/templates, /usr/share/ruiner]
//	ext: .html
//
// A file that cannot be decoded is logged and ignored. Command-line flags
// override config file values.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &doc)
		if err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.Any("error", err))

			return config{}, nil
		}

		conf := config{}
		conf.flatten("", doc)

		return conf, nil
	}
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	name := flag.Name

	if value, ok := r[name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(name, "-", "_")]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// flatten adds the entries of m to r, joining nested keys with hyphens.
func (r config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := value.(map[string]any); ok {
			r.flatten(key, sub)

			continue
		}

		r[key] = scalar(value)
	}
}

// scalar converts a decoded YAML value to the form kong expects: numbers as
// strings and sequences as slices of strings.
func scalar(v any) any {
	switch v := v.(type) {
	case nil, bool, string:
		return v

	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = fmt.Sprint(scalar(e))
		}

		return out

	default:
		return fmt.Sprint(v)
	}
}
