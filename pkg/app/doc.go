// Package app is the composition root of the demo UI: a table of users and
// a form editing one user, both rendered from a single observable state.
//
// Every write to the state is logged and reconciled into the live structure
// the app is mounted as:
//
//	a := app.New(app.DefaultState())
//	env := component.NewEnv(dom.NewDocument())
//	page, _ := dom.ParseDocument(`<body><div id="main"></div></body>`)
//	_, err := a.Bootstrap(page, env)
package app
