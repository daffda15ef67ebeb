package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing
// current location, exits, inventory, and combat state.
func (m Model) renderStatusBar() string {
	locName := m.ctx.Location
	if loc, found := m.interp.Store.Location(m.ctx.Location); found && loc.Name != "" {
		locName = loc.Name
	}

	exits := m.interp.Store.Exits(m.ctx.Location)
	dirs := make([]string, 0, len(exits))
	for dir := range exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	exitStr := strings.Join(dirs, ",")

	left := fmt.Sprintf(" %s | Exits: %s", locName, exitStr)

	right := " "
	if m.ctx.InCombat {
		opponent := m.ctx.Opponent
		if en, found := m.interp.Store.Entity(m.ctx.Opponent); found {
			opponent = en.Name
		}
		right = fmt.Sprintf("Fighting: %s ", opponent)
	}

	// Show inventory items if they fit, otherwise just count.
	inv := m.interp.Store.Inventory(m.ctx.PlayerID)
	if len(inv) > 0 {
		names := make([]string, 0, len(inv))
		for _, en := range inv {
			names = append(names, en.Name)
		}
		candidate := fmt.Sprintf("Inv: %s | %s", strings.Join(names, ", "), right)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | %s", len(inv), right)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
