// Package errors provides structured, coded errors for inplace.
//
// Every failure the runtime reports carries a short code (e.g., "E001"), a
// category, a one-line message and a longer explanation:
//
//	err := errors.New("E002").
//	    WithComponent("App > Form").
//	    WithDetail("markup has 4 placeholders, 5 children attached")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E002: Placeholder count does not match attached children
//	//
//	//   in App > Form
//	//
//	//   markup has 4 placeholders, 5 children attached
//
// # Categories
//
//   - render: markup could not be produced, parsed or assembled
//   - reconcile: live and fresh structures diverged (warnings only)
//   - runtime: lifecycle misuse (change before mount, unknown events)
//   - config: project configuration errors
//   - cli: command line errors
//   - storage: snapshot persistence errors
//
// Errors wrap their cause, so errors.Is and errors.As from the standard
// library work through them. Is(err, code) matches on the code.
package errors
