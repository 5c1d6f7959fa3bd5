package live

import (
	"golang.org/x/net/html"

	"github.com/vango-dev/inplace/internal/errors"
	"github.com/vango-dev/inplace/pkg/app"
	"github.com/vango-dev/inplace/pkg/dom"
)

// Event is an input event sent by a browser. The target is addressed by
// its element path from the app root, or by its name attribute.
type Event struct {
	Path  []int   `json:"path,omitempty"`
	Name  string  `json:"name,omitempty"`
	Type  string  `json:"type"`
	Value *string `json:"value,omitempty"`
}

// Result lists the reconciliations an event caused.
type Result struct {
	Updates []Update `json:"updates"`
}

// Apply dispatches ev against the live structure. A value is stored on the
// target before the event fires, the way typing into an input does.
func (s *Server) Apply(ev Event) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Type == "" {
		ev.Type = "change"
	}
	target, err := s.target(ev)
	if err != nil {
		s.config.Metrics.RecordEvent(ev.Type, err)
		return Result{}, err
	}

	res, err := s.collect(func() error {
		if ev.Value != nil {
			return s.doc.SetValue(target, *ev.Value, ev.Type)
		}
		return s.doc.Dispatch(target, ev.Type)
	})
	if err != nil {
		// Handled events are counted by the handlers themselves.
		s.config.Metrics.RecordEvent(ev.Type, err)
		return res, err
	}
	s.logger.Debug("event applied", "type", ev.Type, "path", ev.Path, "name", ev.Name, "updates", len(res.Updates))
	return res, nil
}

// Mutate runs fn against the app's state and returns the reconciliations
// it caused. Connected clients receive them as well.
func (s *Server) Mutate(fn func(a *app.App)) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, _ := s.collect(func() error {
		fn(s.app)
		return nil
	})
	return res
}

// collect must be called with s.mu held.
func (s *Server) collect(fn func() error) (Result, error) {
	s.pending = nil
	err := fn()
	res := Result{Updates: s.pending}
	s.pending = nil
	if res.Updates == nil {
		res.Updates = []Update{}
	}
	return res, err
}

func (s *Server) target(ev Event) (*html.Node, error) {
	root := s.app.Element()
	var target *html.Node
	switch {
	case ev.Name != "":
		target = dom.ByName(root, ev.Name)
	case ev.Path != nil:
		target = dom.Resolve(root, ev.Path)
	default:
		return nil, errors.New(errors.CodeInvalidArgument).WithDetail("event needs a path or a name")
	}
	if target == nil {
		return nil, errors.New(errors.CodeInvalidArgument).
			WithDetailf("no element at path %v name %q", ev.Path, ev.Name)
	}
	return target, nil
}
