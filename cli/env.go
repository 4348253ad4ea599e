package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/caarlos0/env/v10"

	"github.com/ardnew/ruiner/cli/cmd"
	"github.com/ardnew/ruiner/pkg"
	"github.com/ardnew/ruiner/template"
)

// baseTemplates is the name of the default template directory inside the
// configuration directory.
const baseTemplates = "templates"

// ErrEnvironment reports an environment variable that cannot be decoded.
var ErrEnvironment = template.NewError("invalid environment")

// environment holds the defaults read from RUINER_* environment variables.
// They become kong variables, and so flag defaults, overridden by the config
// file and the command line.
type environment struct {
	// Path lists template search directories, like PATH.
	Path     []string `env:"PATH"      envSeparator:":"`
	Ext      string   `env:"EXT"       envDefault:".xml"`
	MaxDepth int      `env:"MAX_DEPTH" envDefault:"100"`
}

// loadEnvironment decodes the environment. A nil environ reads the process
// environment.
func loadEnvironment(environ map[string]string) (environment, error) {
	var e environment

	err := env.ParseWithOptions(&e, env.Options{
		Prefix:      pkg.EnvPrefix,
		Environment: environ,
	})
	if err != nil {
		return e, ErrEnvironment.Wrap(err)
	}

	if e.MaxDepth < 0 {
		return e, ErrEnvironment.
			Wrap(fmt.Errorf("%sMAX_DEPTH must not be negative", pkg.EnvPrefix)).
			With(slog.Int("max-depth", e.MaxDepth))
	}

	if e.Ext == "" {
		e.Ext = template.DefaultExt
	}

	e.Path = nonEmpty(e.Path)
	if len(e.Path) == 0 {
		e.Path = []string{configPath(baseTemplates)}
	}

	return e, nil
}

// nonEmpty drops empty elements, as left by "a::b" or a trailing ':'.
func nonEmpty(s []string) []string {
	out := s[:0:0]

	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

func (e environment) vars() kong.Vars {
	return kong.Vars{
		cmd.DirsIdentifier:     strings.Join(e.Path, ":"),
		cmd.ExtIdentifier:      e.Ext,
		cmd.MaxDepthIdentifier: strconv.Itoa(e.MaxDepth),
	}
}
