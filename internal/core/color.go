package core

// Color is a foreground color for a screen cell.
// The terminal layer maps each value to an ANSI color.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorCyan
	ColorBrightWhite
	ColorBrightYellow
	ColorGray
)
