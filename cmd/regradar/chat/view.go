// Package chat view rendering for the RegRadar TUI.
package chat

import (
	"fmt"
	"strings"

	"github.com/kingabzpro/RegRadar/internal/agent"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	content := m.styles.Content.Render(m.viewport.View())

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textarea.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		inputArea,
		footer,
	)
}

func (m Model) renderHeader() string {
	title := "🛰️ RegRadar"
	session := m.styles.Muted.Render(fmt.Sprintf("  session %s", m.userID))
	return m.styles.Header.Render(title) + session
}

func (m Model) renderFooter() string {
	if m.isLoading {
		status := m.statusLine
		if status == "" {
			status = "Working..."
		}
		return m.styles.Footer.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Status.Render(status)))
	}

	hints := "Enter: send  Ctrl+R: details  Esc: quit"
	if m.lastResult != nil {
		toggle := "show"
		if m.showDetails {
			toggle = "hide"
		}
		hints = fmt.Sprintf("Enter: send  Ctrl+R: %s details  Esc: quit", toggle)
	}
	return m.styles.Footer.Render(hints)
}

// refreshViewport re-renders the transcript into the viewport and
// scrolls to the bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.history {
		switch msg.Role {
		case "user":
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
			sb.WriteString("\n\n")

		case "system":
			sb.WriteString("  " + m.styles.Muted.Render("· "+msg.Content) + "\n")

		default: // assistant
			assistantStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(assistantStyle.Render("RegRadar") + "\n")
			sb.WriteString(m.safeRenderMarkdown(msg.Content))
			sb.WriteString("\n")
		}
	}

	// Streaming assistant message in progress
	if m.streamBuf != "" {
		assistantStyle := m.styles.Bold.
			Foreground(m.styles.Theme.Accent).
			MarginTop(1)
		sb.WriteString(assistantStyle.Render("RegRadar") + "\n")
		sb.WriteString(m.safeRenderMarkdown(m.streamBuf))
		sb.WriteString("\n")
	}

	if m.err != nil {
		sb.WriteString("\n" + m.styles.Error.Render("Error: "+m.err.Error()) + "\n")
	}

	sb.WriteString(m.renderDetailSections())

	return sb.String()
}

// renderDetailSections shows the raw retrieval results and related past
// queries from the last turn, collapsed behind Ctrl+R.
func (m Model) renderDetailSections() string {
	if m.lastResult == nil || m.isLoading {
		return ""
	}

	var sb strings.Builder
	deduped := agent.DedupeByURL(m.lastResult.Aggregate.Results)

	if !m.showDetails {
		sb.WriteString("\n")
		sb.WriteString("  " + m.styles.Muted.Render(fmt.Sprintf("[+] Raw results (%d)", len(deduped))) + "\n")
		if len(m.lastResult.MemoryRecords) > 0 {
			sb.WriteString("  " + m.styles.Muted.Render(fmt.Sprintf("[+] Related past queries (%d)", len(m.lastResult.MemoryRecords))) + "\n")
		}
		return sb.String()
	}

	sb.WriteString("\n")
	sb.WriteString("  " + m.styles.Muted.Render(fmt.Sprintf("[-] Raw results (%d)", len(deduped))) + "\n")
	for _, res := range deduped {
		line := fmt.Sprintf("    • [%s] %s", res.Source, res.Title)
		sb.WriteString(m.styles.Muted.Render(line) + "\n")
		sb.WriteString(m.styles.Muted.Render("      "+res.URL) + "\n")
	}

	if len(m.lastResult.MemoryRecords) > 0 {
		sb.WriteString("  " + m.styles.Muted.Render(fmt.Sprintf("[-] Related past queries (%d)", len(m.lastResult.MemoryRecords))) + "\n")
		for i, rec := range m.lastResult.MemoryRecords {
			first := rec.Memory
			if idx := strings.IndexByte(first, '\n'); idx > 0 {
				first = first[:idx]
			}
			sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("    %d. %s", i+1, first)) + "\n")
		}
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery; glamour can
// panic on pathological input mid-stream.
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}
