// Package tui implements the slidefigs terminal figure browser.
//
// It lists the registered slide figures with the outcome of their latest
// render, shows the details and render history of the selected figure, and
// renders figures in place. Built with Charmbracelet's BubbleTea, Lipgloss
// and Bubbles libraries.
//
// Component layout:
//
//	model.go      root model, message routing, Init/Update/View
//	theme.go      color and style definitions
//	header.go     top bar and footer with key hints
//	figurelist.go figure selector with status dots
//	detail.go     metadata of the selected figure's latest artifact
//	history.go    past artifacts of the selected figure
//	helpers.go    filtering, truncation and formatting helpers
package tui
