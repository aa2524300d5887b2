package render

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/nactl/internal/engine"
	"github.com/dm/nactl/internal/format"
)

// JSON writes view as indented JSON followed by a newline.
func JSON(w io.Writer, view any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

// Stats writes a one-block summary of governor activity, meant for stderr.
func Stats(w io.Writer, s engine.GovernorStats) error {
	st := newStyles(lipgloss.NewRenderer(w))
	p := &printer{st: st}
	p.heading("Requests", "")
	p.field("attempts", format.FormatNumber(s.Attempts))
	p.field("retries", format.FormatNumber(s.Retries))
	p.field("throttled", format.FormatNumber(s.Throttled))
	p.field("peak", format.FormatNumber(s.PeakInFlight))
	p.field("latency", format.FormatDuration(s.MeanLatency))

	kinds := make([]string, 0, len(s.Failures))
	for k := range s.Failures {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		p.line(st.label.Render("failed"), st.err.Render(k), st.value.Render(format.FormatNumber(s.Failures[k])))
	}
	_, err := io.WriteString(w, p.b.String())
	return err
}
