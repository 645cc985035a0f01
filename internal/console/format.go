package console

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Adel-MESRATI/Nexus-AI/internal/domain"
)

// FormatPresets renders the option lists for the console's help output.
func FormatPresets(p *Presets) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Aspect ratios:\n")
	for _, ratio := range p.AspectRatios {
		fmt.Fprintf(&b, "  %-6s %s (%dx%d)\n", ratio.Value, optionLabel(ratio.Label, ratio.Value), ratio.Width, ratio.Height)
	}
	b.WriteString("Styles:\n")
	for _, style := range p.Styles {
		label := optionLabel(style.Label, style.Value)
		if style.Description != "" {
			fmt.Fprintf(&b, "  %-10s %s: %s\n", style.Value, label, style.Description)
			continue
		}
		fmt.Fprintf(&b, "  %-10s %s\n", style.Value, label)
	}
	return b.String()
}

func optionLabel(label, value string) string {
	return lo.Ternary(strings.TrimSpace(label) != "", label, cases.Title(language.Und).String(value))
}

// FormatHistory renders one line per history entry, newest first.
func FormatHistory(history []domain.GeneratedImage) string {
	if len(history) == 0 {
		return "No images yet.\n"
	}
	lines := lo.Map(history, func(img domain.GeneratedImage, i int) string {
		return fmt.Sprintf("%2d. %s  %s  %s", i+1, img.ID, img.CreatedAt.Format("15:04:05"), truncate(img.Prompt, 60))
	})
	return strings.Join(lines, "\n") + "\n"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
