package ui

import (
	"strconv"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/mobanhawi/freewatch/internal/volume"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing…"
	}

	lines := make([]string, 0, m.height)

	// ── Header ──────────────────────────────────────────────────────────────
	lines = append(lines, styleHeader.Width(m.width).Render("  "+appName))
	lines = append(lines, styleInfo.Width(m.width).Render(truncate(m.infoLine(), m.width-2)))
	lines = append(lines, m.statusLine())
	lines = append(lines, m.divider())

	// ── History (newest at the bottom) ─────────────────────────────────────
	listHeight := m.height - 6
	if listHeight < 1 {
		listHeight = 1
	}
	start := len(m.lines) - listHeight
	if start < 0 {
		start = 0
	}
	for _, l := range m.lines[start:] {
		lines = append(lines, styleLine.Render(truncate(l, m.width-1)))
	}
	for i := len(m.lines) - start; i < listHeight; i++ {
		lines = append(lines, "")
	}

	// ── Footer ──────────────────────────────────────────────────────────────
	lines = append(lines, m.divider())
	lines = append(lines, m.footer())

	return strings.Join(lines, "\n")
}

func (m Model) infoLine() string {
	parts := []string{
		"folder: " + m.info.TargetDir,
		"volume: " + m.info.Volume,
		"minimum: " + strconv.FormatUint(m.info.MinFreeGB, 10) + " GB",
		"every " + m.info.Period.String(),
	}
	if m.info.Pattern != "" && m.info.Pattern != "*" {
		parts = append(parts, "pattern: "+m.info.Pattern)
	}
	return strings.Join(parts, "  ·  ")
}

func (m Model) statusLine() string {
	free := "free: …"
	style := styleOK
	if m.haveFree {
		gb := volume.ToGB(m.freeBytes)
		free = "free: " + strconv.FormatUint(gb, 10) + " GB (" + humanize.IBytes(m.freeBytes) + ")"
		if gb < m.info.MinFreeGB {
			style = styleWarn
		}
	}

	var state string
	switch m.state {
	case StatePurging:
		state = m.sp.View() + " purging"
	case StateStopping:
		state = m.sp.View() + " stopping"
	case StateStopped:
		state = "stopped"
	default:
		state = "watching"
		if !m.nextRun.IsZero() {
			state += "  next run: " + m.nextRun.Format("15:04")
		}
	}

	return " " + style.Render(free) + "   " + styleBusy.Render(state)
}

func (m Model) footer() string {
	hint := " Press any key to stop"
	if m.state == StateStopping {
		hint = " Press any key again to leave now"
	}
	return styleFooter.Width(m.width).Render(hint)
}

func (m Model) divider() string {
	w := m.width
	if w < 1 {
		w = 1
	}
	return styleDivider.Render(strings.Repeat("─", w))
}

// truncate shortens a string with an ellipsis if it exceeds maxLen runes.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
