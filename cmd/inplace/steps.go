package main

import (
	"strconv"
	"strings"

	"github.com/vango-dev/inplace/internal/errors"
	"github.com/vango-dev/inplace/pkg/app"
	"github.com/vango-dev/inplace/pkg/live"
)

// step is one change applied by simulate and snapshot.
//
//	input:<name>=<value>            type into the named input
//	click:<i>,<j>,...               click the element at the path
//	set:<field>=<value>             write a form field directly
//	append:<name>,<city>,<state>,<age>
//	swap:<dataset>                  replace the table data
type step struct {
	raw  string
	kind string
	run  func(srv *live.Server) (live.Result, error)
}

func parseSteps(args []string) ([]step, error) {
	steps := make([]step, 0, len(args))
	for _, arg := range args {
		s, err := parseStep(arg)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func parseStep(arg string) (step, error) {
	kind, payload, ok := strings.Cut(arg, ":")
	if !ok {
		return step{}, invalidStep(arg, "expected <kind>:<payload>")
	}
	s := step{raw: arg, kind: kind}

	switch kind {
	case "input":
		name, value, ok := strings.Cut(payload, "=")
		if !ok || name == "" {
			return step{}, invalidStep(arg, "expected input:<name>=<value>")
		}
		s.run = func(srv *live.Server) (live.Result, error) {
			return srv.Apply(live.Event{Name: name, Type: "change", Value: &value})
		}

	case "click":
		path, err := parsePath(payload)
		if err != nil {
			return step{}, invalidStep(arg, err.Error())
		}
		s.run = func(srv *live.Server) (live.Result, error) {
			return srv.Apply(live.Event{Path: path, Type: "click"})
		}

	case "set":
		field, value, ok := strings.Cut(payload, "=")
		if !ok || field == "" {
			return step{}, invalidStep(arg, "expected set:<field>=<value>")
		}
		s.run = func(srv *live.Server) (live.Result, error) {
			return srv.Mutate(func(a *app.App) { a.FormData().Set(field, value) }), nil
		}

	case "append":
		parts := strings.Split(payload, ",")
		if len(parts) != 4 {
			return step{}, invalidStep(arg, "expected append:<name>,<city>,<state>,<age>")
		}
		s.run = func(srv *live.Server) (live.Result, error) {
			return srv.Mutate(func(a *app.App) {
				a.Rows().Append(app.NewUser(parts[0], parts[1], parts[2], parts[3]))
			}), nil
		}

	case "swap":
		table, ok := app.Dataset(payload)
		if !ok {
			return step{}, invalidStep(arg, "unknown dataset "+strconv.Quote(payload)).
				WithSuggestion("Use one of: " + strings.Join(app.DatasetNames(), ", "))
		}
		s.run = func(srv *live.Server) (live.Result, error) {
			return srv.Mutate(func(a *app.App) { a.State().Set("tableData", table) }), nil
		}

	default:
		return step{}, invalidStep(arg, "unknown step kind "+strconv.Quote(kind)).
			WithSuggestion("Use input, click, set, append or swap")
	}
	return s, nil
}

func parsePath(s string) ([]int, error) {
	path := []int{}
	if s == "" {
		return path, nil
	}
	for _, part := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || i < 0 {
			return nil, errors.New(errors.CodeInvalidArgument).WithDetailf("bad path index %q", part)
		}
		path = append(path, i)
	}
	return path, nil
}

func invalidStep(arg, detail string) *errors.Error {
	return errors.New(errors.CodeInvalidArgument).WithDetailf("step %q: %s", arg, detail)
}
