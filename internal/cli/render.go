package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diego-devita/stopweb/internal/dateutil"
	"github.com/diego-devita/stopweb/internal/portal"
	"github.com/diego-devita/stopweb/internal/timesheet"
)

var (
	styleHeader  = lipgloss.NewStyle().Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stylePresent = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleAbsent  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleOrigin  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// renderTimesheet prints one line per day in chronological order.
func renderTimesheet(cache timesheet.Cache, showOrigin bool) string {
	keys := make([]string, 0, len(cache))
	for k := range cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(renderDay(cache[key], showOrigin))
		b.WriteString("\n")
	}
	return b.String()
}

func renderDay(rec timesheet.DayRecord, showOrigin bool) string {
	var b strings.Builder
	b.WriteString(styleHeader.Render(rec.Date.Format("Mon 02/01")))
	b.WriteString("  ")

	switch rec.DayType {
	case timesheet.DayOrdinary:
		b.WriteString(renderOrdinaryDay(rec))
	case timesheet.DayBlank:
		b.WriteString(styleMuted.Render("nessun dato"))
	default:
		b.WriteString(styleMuted.Render(string(rec.DayType)))
	}

	if flags := renderFlags(rec); flags != "" {
		b.WriteString("  ")
		b.WriteString(flags)
	}
	if showOrigin {
		b.WriteString("  ")
		b.WriteString(styleOrigin.Render("[" + rec.Origin.String() + "]"))
	}
	return b.String()
}

func renderOrdinaryDay(rec timesheet.DayRecord) string {
	parts := []string{}
	if len(rec.Punches) > 0 {
		punches := make([]string, len(rec.Punches))
		for i, p := range rec.Punches {
			punches[i] = p.Direction + dateutil.FormatMinutes(p.Minutes).HHMM
		}
		parts = append(parts, strings.Join(punches, " "))
	}
	parts = append(parts, fmt.Sprintf("lavorato %s", dateutil.FormatMinutes(rec.WorkedMinutes).HHMM))
	if rec.HasExpectation {
		parts = append(parts, fmt.Sprintf("uscita %s", dateutil.FormatMinutes(rec.ExpectedCheckout).HHMM))
		deficit := dateutil.FormatMinutes(rec.Deficit).SignedHHMM()
		if rec.Deficit > 0 {
			parts = append(parts, styleWarn.Render("deficit "+deficit))
		} else {
			parts = append(parts, stylePresent.Render("saldo "+deficit))
		}
	}
	if rec.Intervals.Anomaly {
		parts = append(parts, styleAbsent.Render("timbrature anomale"))
	}
	return strings.Join(parts, "  ")
}

func renderFlags(rec timesheet.DayRecord) string {
	var tags []string
	if rec.RemoteWork {
		tags = append(tags, "SW")
	}
	if rec.Vacation {
		tags = append(tags, "FERIE")
	}
	if rec.BusinessTrip {
		tags = append(tags, "TRASF")
	}
	if rec.MealVoucher {
		tags = append(tags, "BP")
	}
	if rec.PermissionMinutes > 0 {
		tags = append(tags, fmt.Sprintf("PERM %s", dateutil.FormatMinutes(rec.PermissionMinutes).HHMM))
	}
	if len(tags) == 0 {
		return ""
	}
	return styleMuted.Render(strings.Join(tags, " "))
}

// renderDirectory prints one line per rubrica entry.
func renderDirectory(entries []portal.DirectoryEntry) string {
	var b strings.Builder
	for _, entry := range entries {
		state := styleAbsent.Render("A")
		if entry.PresenceState == "P" {
			state = stylePresent.Render("P")
		}
		fmt.Fprintf(&b, "%s  %-30s", state, entry.FullName)
		if entry.StateDetail != "" {
			b.WriteString("  ")
			b.WriteString(styleMuted.Render(entry.StateDetail))
		}
		if entry.Phone != "" {
			b.WriteString("  ")
			b.WriteString(styleMuted.Render(entry.Phone))
		}
		b.WriteString("\n")
	}
	return b.String()
}
