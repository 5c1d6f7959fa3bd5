// Package widgets provides the stock components composed by the demo app:
// text and button inputs, a table over observable rows and a form over an
// observable record.
package widgets
