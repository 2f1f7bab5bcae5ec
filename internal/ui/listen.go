// Package ui implements the terminal view of the eventi listen loop: a
// countdown to the next poll cycle and a feed of the emitted events.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/diego-devita/stopweb/internal/events"
	"github.com/diego-devita/stopweb/internal/state"
)

// eventFeedSize bounds the rows rendered in the feed.
const eventFeedSize = 15

// Skipper cuts the poll loop's countdown short. Implemented by *poll.Loop.
type Skipper interface {
	Skip()
}

// Options configures the listen view.
type Options struct {
	Store *state.Store
	Loop  Skipper
}

type tickMsg time.Time

// Model is the Bubble Tea model for `stopweb eventi listen`.
type Model struct {
	store   *state.Store
	loop    Skipper
	styles  Styles
	spinner spinner.Model

	snapshot state.Snapshot
	now      time.Time
	width    int
	quitting bool
}

// NewModel builds the listen model.
func NewModel(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		store:   opts.Store,
		loop:    opts.Loop,
		styles:  DefaultStyles(),
		spinner: sp,
		now:     time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "s":
			if m.loop != nil {
				m.loop.Skip()
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		m.now = time.Time(msg)
		if m.store != nil {
			m.snapshot = m.store.Snapshot()
		}
		return m, tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("stopweb · eventi listen"))
	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.countdownLine())
	b.WriteString("\n\n")
	b.WriteString(m.eventFeed())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("s salta l'attesa · q esci"))
	return b.String()
}

func (m Model) statusLine() string {
	snap := m.snapshot
	parts := []string{fmt.Sprintf("cicli: %d", snap.Cycles)}
	if snap.IsDegraded() {
		parts = append(parts, m.styles.Degraded.Render(fmt.Sprintf("portale irraggiungibile (%d tentativi)", snap.ConsecutiveFailures)))
	} else if snap.LastError != nil {
		parts = append(parts, m.styles.Degraded.Render("ultimo ciclo fallito"))
	}
	if snap.Paused {
		parts = append(parts, m.styles.Paused.Render("in pausa (orario notturno)"))
	}
	return m.styles.Status.Render(strings.Join(parts, " · "))
}

func (m Model) countdownLine() string {
	next := m.snapshot.NextCycle
	if next.IsZero() {
		return m.spinner.View() + " primo aggiornamento in corso"
	}
	remaining := next.Sub(m.now)
	if remaining <= 0 {
		return m.spinner.View() + " aggiornamento in corso"
	}
	return m.styles.Countdown.Render(fmt.Sprintf("prossimo aggiornamento tra %s", formatCountdown(remaining)))
}

func (m Model) eventFeed() string {
	feed := m.snapshot.RecentEvents
	if len(feed) == 0 {
		return m.styles.Status.Render("nessun evento registrato")
	}
	if len(feed) > eventFeedSize {
		feed = feed[len(feed)-eventFeedSize:]
	}

	var b strings.Builder
	// Newest first.
	for i := len(feed) - 1; i >= 0; i-- {
		e := feed[i]
		b.WriteString(m.styles.EventTime.Render(e.Timestamp.Format("15:04:05")))
		b.WriteString(" ")
		b.WriteString(m.styles.EventTag.Render(string(e.Type)))
		b.WriteString(" ")
		b.WriteString(DescribeEvent(e))
		if i > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatCountdown(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// DescribeEvent renders an event payload as a one-line human summary. Also
// used by `stopweb eventi` for the plain console listing.
func DescribeEvent(e events.LogEntry) string {
	p := e.Payload
	switch e.Type {
	case events.EntityFirstSeen:
		return fmt.Sprintf("%s osservato per la prima volta (%s)", p.DisplayName, p.PresenceState)
	case events.EntityReset:
		return fmt.Sprintf("%s riallineato (%s)", p.DisplayName, p.PresenceState)
	case events.PresenceStateChanged:
		return fmt.Sprintf("%s: stato %s -> %s", p.DisplayName, p.Previous, p.Current)
	case events.JustificationChangedFromYesterdaysForecast:
		return fmt.Sprintf("%s: oggi diverso dalla previsione di ieri (%s -> %s)", p.DisplayName, p.Previous, p.Current)
	case events.JustificationChangedTodayVsToday:
		return fmt.Sprintf("%s: giustificativo di oggi cambiato (%s -> %s)", p.DisplayName, p.Previous, p.Current)
	case events.JustificationChangedTomorrowVsToday:
		return fmt.Sprintf("%s: giustificativo di domani cambiato (%s -> %s)", p.DisplayName, p.Previous, p.Current)
	case events.TimesheetNewDay:
		return fmt.Sprintf("prima timbratura del %s", p.DayKey)
	case events.TimesheetPunchesChanged:
		return fmt.Sprintf("timbrature del %s aggiornate", p.DayKey)
	default:
		return string(e.Type)
	}
}

// Run starts the listen view and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
