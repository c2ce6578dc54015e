// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/modgraph/modgraph/internal/render"
)

// Help text styles. Command output uses the render package styles, which
// follow --color and the output terminal.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(render.ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(render.ColorMuted)
)
