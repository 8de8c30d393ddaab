package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rubiojr/agentscope/pkg/core"
	"github.com/rubiojr/agentscope/pkg/storage"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	agentStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 1, 2)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("32")).
			Bold(true)
)

// renderAgent renders a single agent as a bordered card.
func renderAgent(a *core.AgentSummary) string {
	var b strings.Builder

	name := a.Name
	if name == "" {
		name = "(unnamed)"
	}
	b.WriteString(nameStyle.Render(name))
	b.WriteString(" ")
	b.WriteString(metaStyle.Render(a.Key()))

	if a.Description != "" {
		b.WriteString("\n")
		b.WriteString(a.Description)
	}

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(label+":") + " " + value)
	}

	var flags []string
	for _, f := range []struct {
		name string
		on   bool
	}{{"mcp", a.MCP}, {"a2a", a.A2A}, {"active", a.Active}, {"x402", a.X402Support}} {
		if f.on {
			flags = append(flags, f.name)
		}
	}
	field("flags", strings.Join(flags, ", "))
	field("ens", a.ENS)
	field("did", a.DID)
	field("wallet", a.WalletAddress)
	field("owners", strings.Join(a.Owners, ", "))
	field("operators", strings.Join(a.Operators, ", "))
	field("trusts", strings.Join(a.SupportedTrusts, ", "))
	field("skills", strings.Join(a.A2ASkills, ", "))
	field("tools", strings.Join(a.MCPTools, ", "))
	field("prompts", strings.Join(a.MCPPrompts, ", "))
	field("resources", strings.Join(a.MCPResources, ", "))
	if score, ok := a.AverageScore(); ok {
		field("score", strconv.FormatFloat(score, 'f', 2, 64))
	}

	return agentStyle.Render(b.String())
}

// renderResult renders a page of agents with a title and the next cursor.
func renderResult(title string, r *core.SearchResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", title, len(r.Items))))
	b.WriteString("\n")

	if len(r.Items) == 0 {
		b.WriteString(noDataStyle.Render("No agents found."))
		b.WriteString("\n")
		return b.String()
	}

	for i := range r.Items {
		b.WriteString(renderAgent(&r.Items[i]))
		b.WriteString("\n")
	}
	if r.HasMore() {
		b.WriteString(cursorStyle.Render("next cursor: " + r.NextCursor))
		b.WriteString("\n")
	}
	return b.String()
}

// renderStats renders mirror statistics.
func renderStats(path string, s storage.Stats) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Agent mirror"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("database:") + " " + path + "\n")
	b.WriteString(labelStyle.Render("agents:") + " " + formatNumber(s.Agents) + "\n")
	b.WriteString(labelStyle.Render("feedback:") + " " + formatNumber(s.Feedback) + "\n")
	b.WriteString(labelStyle.Render("chains:") + " " + strconv.Itoa(s.Chains) + "\n")
	return b.String()
}

// formatNumber formats a number with K/M suffixes for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	} else {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
