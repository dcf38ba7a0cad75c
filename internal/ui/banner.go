package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var bannerArt = []string{
	"  ___ _             _  ___                   _     ",
	" / __| |___ _  _ __| |/ __|___ _ _  ___ ___| |___ ",
	"| (__| / _ \\ || / _` | (__/ _ \\ ' \\(_-</ _ \\ / -_)",
	" \\___|_\\___/\\_,_\\__,_|\\___\\___/_||_/__/\\___/_\\___|",
}

const bannerSubtitle = "Cloud Console • Reference Data, Search and Diff"

// RenderBanner returns the styled ASCII banner.
func RenderBanner() string {
	baseStyle := lipgloss.NewStyle().Foreground(ColorPrimary)

	maxWidth := 0
	for _, line := range bannerArt {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}

	var rendered strings.Builder
	for _, line := range bannerArt {
		rendered.WriteString(baseStyle.Render(line))
		rendered.WriteString("\n")
	}

	subtitleWidth := lipgloss.Width(bannerSubtitle)
	blockWidth := max(maxWidth, subtitleWidth)

	subtitle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(blockWidth).
		Align(lipgloss.Center).
		Render(bannerSubtitle)

	underline := lipgloss.NewStyle().
		Foreground(ColorBorder).
		Width(blockWidth).
		Align(lipgloss.Center).
		Render(strings.Repeat("─", subtitleWidth))

	return "\n" + rendered.String() + "\n" + subtitle + "\n" + underline + "\n"
}

// compactBanner is used when the terminal is too short for the full art.
func compactBanner() string {
	return BannerStyle.Render("cloudconsole") + MutedStyle.Render("  "+bannerSubtitle)
}
