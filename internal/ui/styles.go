package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	colorAccent = lipgloss.Color("#9b59b6")
	colorTeal   = lipgloss.Color("#1abc9c")
	colorDim    = lipgloss.Color("#444466")
	colorWhite  = lipgloss.Color("#e8e8f0")
	colorGray   = lipgloss.Color("#888899")
	colorRed    = lipgloss.Color("#e74c3c")
	colorYellow = lipgloss.Color("#f1c40f")
	colorGreen  = lipgloss.Color("#2ecc71")

	// Style: header bar
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorAccent).
			Padding(0, 2)

	// Style: configuration summary
	styleInfo = lipgloss.NewStyle().
			Foreground(colorTeal).
			Italic(true).
			Padding(0, 1)

	// Style: free space at or above the minimum
	styleOK = lipgloss.NewStyle().
		Foreground(colorGreen).
		Bold(true)

	// Style: free space below the minimum
	styleWarn = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	// Style: purge / stop activity
	styleBusy = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	// Style: history line
	styleLine = lipgloss.NewStyle().
			Foreground(colorWhite)

	// Style: footer bar
	styleFooter = lipgloss.NewStyle().
			Foreground(colorGray).
			Background(lipgloss.Color("#111122")).
			Padding(0, 1)

	// Style: divider
	styleDivider = lipgloss.NewStyle().
			Foreground(colorDim)
)
