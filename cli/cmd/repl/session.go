package repl

import (
	"context"

	"github.com/ardnew/ruiner/template"
)

// Source loads the templates and parameters a REPL session renders with.
type Source func(ctx context.Context) (template.Registry, template.Params, error)

// session is the rendering state shared by the REPL model and its editor.
type session struct {
	load     Source
	registry template.Registry
	params   template.Params
	opts     []template.Option
}

func newSession(
	ctx context.Context,
	load Source,
	opts ...template.Option,
) (*session, error) {
	s := &session{load: load, opts: opts}

	if err := s.reload(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// reload replaces the templates and parameters with freshly loaded ones.
// The session is unchanged if loading fails.
func (s *session) reload(ctx context.Context) error {
	if s.load == nil {
		return ErrNoSource
	}

	reg, p, err := s.load(ctx)
	if err != nil {
		return err
	}

	if p == nil {
		p = template.Params{}
	}

	s.registry, s.params = reg, p

	return nil
}

// render renders text as an unnamed template.
func (s *session) render(ctx context.Context, text string) (string, error) {
	return template.New(text).Render(ctx, s.params, s.registry, s.opts...)
}
