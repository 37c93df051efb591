package viz

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Good      lipgloss.Color
	Warn      lipgloss.Color
	Bad       lipgloss.Color
}

var Themes = []Theme{
	{
		Name:      "steel",
		Primary:   lipgloss.Color("#7fdbff"),
		Secondary: lipgloss.Color("#a0a8b8"),
		Text:      lipgloss.Color("#e8eef4"),
		Muted:     lipgloss.Color("#5a6270"),
		Good:      lipgloss.Color("#2ecc71"),
		Warn:      lipgloss.Color("#f1c40f"),
		Bad:       lipgloss.Color("#e74c3c"),
	},
	{
		Name:      "ember",
		Primary:   lipgloss.Color("#ff8c42"),
		Secondary: lipgloss.Color("#ffd166"),
		Text:      lipgloss.Color("#fff5eb"),
		Muted:     lipgloss.Color("#7a5c4a"),
		Good:      lipgloss.Color("#06d6a0"),
		Warn:      lipgloss.Color("#ffd166"),
		Bad:       lipgloss.Color("#ef476f"),
	},
	{
		Name:      "mono",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#bbbbbb"),
		Text:      lipgloss.Color("#eeeeee"),
		Muted:     lipgloss.Color("#777777"),
		Good:      lipgloss.Color("#ffffff"),
		Warn:      lipgloss.Color("#bbbbbb"),
		Bad:       lipgloss.Color("#888888"),
	},
}

// GetTheme returns the named theme, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
