package app

import (
	"log/slog"

	"golang.org/x/net/html"

	"github.com/vango-dev/inplace/internal/errors"
	"github.com/vango-dev/inplace/pkg/component"
	"github.com/vango-dev/inplace/pkg/dom"
	"github.com/vango-dev/inplace/pkg/reactive"
	"github.com/vango-dev/inplace/pkg/vdom"
	"github.com/vango-dev/inplace/pkg/widgets"
)

// MountPointID is the id of the element the app attaches to.
const MountPointID = "main"

// App is the root component.
type App struct {
	*component.Frame
	state  *reactive.Object
	logger *slog.Logger
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger for change notifications and form output.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an App whose state is an observable copy of initial.
// Missing tableData and formData records are created before the listener
// is bound, so construction never notifies.
func New(initial map[string]any, opts ...Option) *App {
	a := &App{logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	a.Frame = component.NewFrame(a)
	a.state = reactive.Wrap(initial, nil).(*reactive.Object)
	a.ensureTable()
	a.ensureForm()
	reactive.Wrap(a.state, a.onDataChanged)
	return a
}

// State returns the observable state.
func (a *App) State() *reactive.Object { return a.state }

// TableData returns the observable table state. When the record has been
// replaced by something that is not an object, it returns an empty unbound
// record. TableData never writes to the state.
func (a *App) TableData() *reactive.Object {
	return a.record("tableData")
}

// FormData returns the observable form state. Like TableData it never
// writes to the state.
func (a *App) FormData() *reactive.Object {
	return a.record("formData")
}

func (a *App) record(key string) *reactive.Object {
	if obj, ok := a.state.Get(key).(*reactive.Object); ok {
		return obj
	}
	return reactive.NewObject(nil)
}

// Rows returns the observable table rows, recreating the table record
// first if it is missing. It writes to the state and must not be called
// from Render.
func (a *App) Rows() *reactive.Array {
	return a.ensureTable()
}

func (a *App) ensureTable() *reactive.Array {
	table, ok := a.state.Get("tableData").(*reactive.Object)
	if !ok {
		table = reactive.NewObject(nil)
		a.state.Set("tableData", table)
	}
	if _, ok := table.Get("columns").(*reactive.Array); !ok {
		table.Set("columns", reactive.NewArray(nil))
	}
	rows, ok := table.Get("rows").(*reactive.Array)
	if !ok {
		rows = reactive.NewArray(nil)
		table.Set("rows", rows)
	}
	return rows
}

func (a *App) ensureForm() {
	if _, ok := a.state.Get("formData").(*reactive.Object); !ok {
		a.state.Set("formData", reactive.NewObject(nil))
	}
}

// Snapshot returns a plain copy of the state.
func (a *App) Snapshot() map[string]any {
	out, _ := reactive.Unwrap(a.state).(map[string]any)
	return out
}

func (a *App) Render() *vdom.VNode {
	return vdom.Div(vdom.Class("app"),
		a.Attach(widgets.NewTable(a.TableData())),
		a.Attach(widgets.NewForm(a.FormData(), widgets.WithLogger(a.logger))),
	)
}

func (a *App) onDataChanged(key string, oldValue, newValue any) {
	a.logger.Info("state changed", "key", key, "old", oldValue, "new", newValue)
	if a.Element() == nil {
		return
	}
	if err := a.OnExternalChange(key, oldValue, newValue); err != nil {
		a.logger.Error("reconcile failed", "key", key, "error", err)
	}
}

// Bootstrap mounts the app and appends its root to the element with id
// MountPointID in page.
func (a *App) Bootstrap(page *html.Node, env *component.Env) (*html.Node, error) {
	mountPoint := dom.ByID(page, MountPointID)
	if mountPoint == nil {
		return nil, errors.New(errors.CodeMountPointMissing).
			WithDetailf("no element with id %q", MountPointID)
	}
	root, err := a.Mount(env)
	if err != nil {
		return nil, err
	}
	mountPoint.AppendChild(root)
	return root, nil
}
