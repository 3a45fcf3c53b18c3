package member

import "strings"

// Presentation color helpers. Both are pure functions of their inputs
// so the frontend can snapshot-test rendered rows.

var avatarPalette = []string{"red", "blue", "green", "purple", "pink", "indigo"}

var sportColors = map[string]string{
	"karate":   "orange",
	"gym":      "blue",
	"football": "emerald",
}

const defaultSportColor = "gray"

// AvatarColor picks a palette color from the name's length.
// The same name always yields the same color.
func AvatarColor(name string) string {
	return avatarPalette[len(name)%len(avatarPalette)]
}

// SportColor returns the badge color for a sport, case-insensitively.
// Unknown or missing sports get the default.
func SportColor(sport string) string {
	if c, ok := sportColors[strings.ToLower(sport)]; ok {
		return c
	}
	return defaultSportColor
}
