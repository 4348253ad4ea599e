package template

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"slices"
	"strings"
)

// DefaultExt is the default file extension of template files.
const DefaultExt = ".xml"

// Registry maps template names to templates. A nil Registry is empty.
type Registry map[string]*Template

// Lookup returns the template named name.
func (r Registry) Lookup(name string) (*Template, bool) {
	t, ok := r[name]

	return t, ok && t != nil
}

// Names returns the template names in sorted order.
func (r Registry) Names() []string {
	return slices.Sorted(maps.Keys(r))
}

// Merge returns a new registry holding the templates of r and other.
// Templates already in r take precedence.
func (r Registry) Merge(other Registry) Registry {
	out := make(Registry, len(r)+len(other))
	maps.Copy(out, other)
	maps.Copy(out, r)

	return out
}

// Render renders the template named name. See [Render].
func (r Registry) Render(
	ctx context.Context,
	name string,
	params Params,
	opts ...Option,
) (string, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return "", ErrLookupFailure.
			Wrap(fmt.Errorf("template %q not found", name)).
			With(slog.String("name", name))
	}

	rr := renderer{config: makeConfig(opts...), registry: r}

	return rr.template(ctx, t, params, "", "", []string{name})
}

// NameOf returns the registry name of a template file: its base name without
// ext. It reports false if file does not end in ext or the name is not a
// valid expression name.
func NameOf(file, ext string) (string, bool) {
	base := path.Base(file)
	if !strings.HasSuffix(base, ext) {
		return "", false
	}

	name := strings.TrimSuffix(base, ext)

	return name, IsName(name)
}

// LoadFS walks fsys and loads every regular file ending in ext.
// Files whose names are not valid expression names are skipped since no
// marker could refer to them.
func LoadFS(ctx context.Context, fsys fs.FS, ext string) (Registry, error) {
	if ext == "" {
		ext = DefaultExt
	}

	reg := Registry{}
	seen := map[string]string{}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return ErrReadTemplate.Wrap(err).With(slog.String("path", p))
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		name, ok := NameOf(p, ext)
		if !ok {
			return nil
		}

		if prev, dup := seen[name]; dup {
			return ErrDuplicateTemplate.
				Wrap(fmt.Errorf("%q defined by %s and %s", name, prev, p)).
				With(slog.String("name", name))
		}

		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return ErrReadTemplate.Wrap(err).With(slog.String("path", p))
		}

		seen[name] = p
		reg[name] = New(string(b))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reg, nil
}

// LoadDirs loads the templates of each directory in dirs. A name defined in
// an earlier directory shadows the same name in later ones. Directories that
// do not exist are skipped.
func LoadDirs(ctx context.Context, ext string, dirs ...string) (Registry, error) {
	var reg Registry

	for _, dir := range dirs {
		if dir == "" {
			continue
		}

		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		r, err := LoadFS(ctx, os.DirFS(dir), ext)
		if err != nil {
			return nil, WrapError(err).With(slog.String("dir", dir))
		}

		reg = reg.Merge(r)
	}

	return reg, nil
}
