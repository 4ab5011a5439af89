package styles

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"

	"github.com/thenoetrevino/tasknote/internal/config"
	"github.com/thenoetrevino/tasknote/internal/models"
)

var (
	// Card styles
	CardStyle lipgloss.Style
	CardWidth = 80

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	LabelStyle    lipgloss.Style // For field labels like "Start:", "Link:"
	ValueStyle    lipgloss.Style // For field values
	SectionStyle  lipgloss.Style // For section headers like "Memo", "Images"
	LinkStyle     lipgloss.Style

	// Status styles
	OpenStyle    lipgloss.Style
	DoneStyle    lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
)

func init() {
	Init(config.Default().ColorScheme)
}

// Init initializes all CLI styles with the given color scheme
func Init(colors config.ColorScheme) {
	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colors.Border)).
		Padding(1, 2).
		Width(CardWidth)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Title))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Subtle))

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Accent))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Normal))

	SectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Accent)).
		Bold(true).
		MarginTop(1)

	LinkStyle = lipgloss.NewStyle().
		Underline(true).
		Foreground(lipgloss.Color(colors.Link))

	OpenStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Open))

	DoneStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Done))

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.InfoFg))

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.ErrorFg))

	WarningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.WarningFg))
}

// ═══════════════════════════════════════════════════════════════════
// HELPER FUNCTIONS
// ═══════════════════════════════════════════════════════════════════

// Cache Glamour renderers by width to avoid expensive re-creation
var rendererCache sync.Map // map[int]*glamour.TermRenderer

func getRenderer(width int) (*glamour.TermRenderer, error) {
	if cached, ok := rendererCache.Load(width); ok {
		return cached.(*glamour.TermRenderer), nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}

	rendererCache.Store(width, renderer)
	return renderer, nil
}

// RenderMemo renders a markdown memo for the terminal. The raw text is
// returned when rendering fails.
func RenderMemo(memo string, width int) string {
	if strings.TrimSpace(memo) == "" {
		return SubtitleStyle.Italic(true).Render("No memo")
	}

	renderer, err := getRenderer(width)
	if err == nil {
		rendered, err := renderer.Render(memo)
		if err == nil {
			return strings.TrimSpace(rendered)
		}
	}
	return memo
}

// StatusChip renders [done] or [open]
func StatusChip(task *models.Task) string {
	if task.Completed {
		return DoneStyle.Render("[done]")
	}
	return OpenStyle.Render("[open]")
}

// DateWindow renders the task's start/end as "start → end"
func DateWindow(task *models.Task) string {
	switch {
	case task.StartDate != "" && task.EndDate != "":
		return task.StartDate + " → " + task.EndDate
	case task.StartDate != "":
		return task.StartDate
	case task.EndDate != "":
		return "→ " + task.EndDate
	}
	return ""
}

// RenderTaskLine renders a one-line summary for list output
func RenderTaskLine(task *models.Task, now time.Time) string {
	parts := []string{
		StatusChip(task),
		SubtitleStyle.Render(shortID(task.ID)),
		TitleStyle.Render(displayTitle(task)),
	}
	if window := DateWindow(task); window != "" {
		parts = append(parts, ValueStyle.Render(window))
	}
	parts = append(parts, SubtitleStyle.Render("updated "+humanize.RelTime(task.UpdatedAt, now, "ago", "from now")))
	return strings.Join(parts, "  ")
}

// RenderTaskCard renders every field of a task inside a card
func RenderTaskCard(task *models.Task) string {
	var content strings.Builder

	content.WriteString(TitleStyle.Render(displayTitle(task)) + "  " + StatusChip(task))
	content.WriteString("\n")
	content.WriteString(SubtitleStyle.Render(task.ID))
	content.WriteString("\n\n")

	if task.Caption != "" {
		content.WriteString(ValueStyle.Render(task.Caption) + "\n\n")
	}

	field := func(label, value string) {
		if value != "" {
			content.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(label), value))
		}
	}
	if window := DateWindow(task); window != "" {
		field("Dates:", ValueStyle.Render(window))
	}
	if task.Link != "" {
		field("Link:", LinkStyle.Render(task.Link))
	}
	switch {
	case len(task.Images) > 0:
		field("Images:", ValueStyle.Render(fmt.Sprintf("%d attached", len(task.Images))))
	case task.ImageURL != "":
		field("Image:", LinkStyle.Render(task.ImageURL))
	}
	field("Created:", SubtitleStyle.Render(task.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM")))
	field("Updated:", SubtitleStyle.Render(task.UpdatedAt.Local().Format("Jan 2, 2006 3:04 PM")))
	if task.CompletedAt != nil {
		field("Completed:", SubtitleStyle.Render(task.CompletedAt.Local().Format("Jan 2, 2006 3:04 PM")))
	}

	content.WriteString(SectionStyle.Render("Memo"))
	content.WriteString("\n")
	content.WriteString(RenderMemo(task.Memo, CardWidth-6))

	return RenderCard(content.String())
}

// RenderCard wraps content in a styled card border
func RenderCard(content string) string {
	return CardStyle.Render(content)
}

func displayTitle(task *models.Task) string {
	if task.Title == "" {
		return "(untitled)"
	}
	return task.Title
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
