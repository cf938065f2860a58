package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"upsend/internal/model"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, width int) string {
	switch mode {
	case model.ModeInsert:
		return renderFormHelp(width)
	case model.ModeSearch:
		return renderSearchHelp(width)
	}

	switch screen {
	case model.ScreenCampaigns:
		return renderCampaignsHelp(width)
	case model.ScreenLogs:
		return renderLogsHelp(width)
	case model.ScreenCampaignDetail:
		return renderCampaignDetailHelp(width)
	case model.ScreenPreview:
		return renderPreviewHelp(width)
	default:
		return renderDefaultHelp(width)
	}
}

func renderCampaignsHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("tab", "next col"),
		helpKey("s/1-9", "sort"),
		helpKey("/", "search"),
		helpKey("a", "new campaign"),
		helpKey("enter", "details"),
		helpKey("L", "logs"),
		helpKey("y/Y", "copy"),
		helpKey("u/ctrl+r", "undo/redo"),
	}
	return renderHelpLine(keys, width)
}

func renderLogsHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("tab", "next col"),
		helpKey("s/1-9", "sort"),
		helpKey("/", "search"),
		helpKey("c", "campaigns"),
		helpKey("y/Y", "copy"),
		helpKey("r", "refresh"),
	}
	return renderHelpLine(keys, width)
}

func renderCampaignDetailHelp(width int) string {
	keys := []string{
		helpKey("h/esc", "back"),
		helpKey("s/1-9", "sort logs"),
		helpKey("y/Y", "copy"),
		helpKey("d", "delete"),
	}
	return renderHelpLine(keys, width)
}

func renderPreviewHelp(width int) string {
	keys := []string{
		helpKey("h/esc", "back"),
		helpKey("s/1-9", "sort"),
		helpKey("/", "search"),
		helpKey("enter", "open draft"),
		helpKey("u", "discard draft"),
	}
	return renderHelpLine(keys, width)
}

func renderSearchHelp(width int) string {
	keys := []string{
		helpKey("type", "filter rows"),
		helpKey("enter", "keep filter"),
		helpKey("esc", "leave search"),
	}
	return renderHelpLine(keys, width)
}

func renderFormHelp(width int) string {
	keys := []string{
		helpKey("tab", "next field"),
		helpKey("shift+tab", "prev field"),
		helpKey("→", "accept mode"),
		helpKey("ctrl+s", "save draft"),
		helpKey("esc", "cancel"),
	}
	return renderHelpLine(keys, width)
}

func renderDefaultHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("h/l", "back/select"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Tables (Nav Mode)"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"tab / shift+tab", "Cycle active column"},
			{"s", "Sort active column (toggles asc/desc)"},
			{"1-9", "Sort column N"},
			{"dates", "Not sortable; sort # for creation order"},
			{"/", "Search rows (tables with a search box)"},
			{"y / Y", "Copy cell / row"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom"},
			{"ctrl+d", "Half page down"},
			{"ctrl+u", "Half page up"},
			{"u / ctrl+r", "Undo / redo"},
			{"esc", "Cancel / close"},
			{"q", "Quit (from top-level)"},
			{"?", "Toggle help"},
		}),
		titleSection("Campaigns Screen"),
		helpSection([]helpItem{
			{"a", "Prepare a new campaign"},
			{"enter / l", "Open campaign detail"},
			{"d", "Delete campaign"},
			{"L / →", "Go to delivery logs"},
			{"r", "Refresh"},
		}),
		titleSection("Delivery Logs Screen"),
		helpSection([]helpItem{
			{"c / ←", "Back to campaigns"},
			{"r", "Refresh"},
		}),
		titleSection("Campaign Detail"),
		helpSection([]helpItem{
			{"d", "Delete campaign"},
			{"b / h / esc", "Back to campaigns"},
		}),
		titleSection("Campaign Form (Insert Mode)"),
		helpSection([]helpItem{
			{"tab", "Next field"},
			{"shift+tab", "Previous field"},
			{"→", "Accept mode suggestion"},
			{"enter", "New line in the template text"},
			{"ctrl+s", "Validate and save draft"},
			{"esc", "Cancel"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
