// Package views holds the view models of the client: what each screen loads,
// which actions it offers, and how its data is summarized. Rendering to the
// terminal lives next to each view model; input handling is in package cli.
package views
