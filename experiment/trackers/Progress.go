package trackers

import (
	"fmt"
	"io"
	"strings"
	"time"

	ts "github.com/samuelfneumann/gopredict/timestep"
)

// Progress displays a progress bar of the episodes completed in an
// evaluation. The bar is redrawn on the same terminal line each time
// the completed percentage changes.
type Progress struct {
	w         io.Writer
	label     string
	width     int
	episodes  int
	completed int
	shown     int
	startTime time.Time
	bar       strings.Builder
}

// NewProgress returns a new Progress Tracker which draws a bar width
// characters wide to w, reaching 100% after episodes episodes
func NewProgress(w io.Writer, label string, width, episodes int) *Progress {
	if episodes <= 0 {
		panic("newProgress: progress must be tracked over at least one " +
			"episode")
	}
	return &Progress{
		w:         w,
		label:     label,
		width:     width,
		episodes:  episodes,
		shown:     -1,
		startTime: time.Now(),
	}
}

// Track ignores TimeSteps, progress is only measured between episodes
func (p *Progress) Track(ts.TimeStep) {}

// TrackEpisode records that an episode has finished and redraws the
// bar if needed
func (p *Progress) TrackEpisode(int, []float64) {
	if p.completed < p.episodes {
		p.completed++
	}

	percent := 100 * p.completed / p.episodes
	if percent != p.shown {
		p.shown = percent
		p.display()
	}
}

// Completed returns the number of episodes completed
func (p *Progress) Completed() int {
	return p.completed
}

func (p *Progress) display() {
	p.bar.Reset()
	p.bar.WriteString(p.label)
	p.bar.WriteString(" |")

	filled := p.completed * p.width / p.episodes
	p.bar.WriteString(strings.Repeat("█", filled))
	p.bar.WriteString(strings.Repeat(" ", p.width-filled))
	fmt.Fprintf(&p.bar, "| [%3d%% | elapsed: %v]", p.shown,
		time.Since(p.startTime).Truncate(time.Second))

	fmt.Fprintf(p.w, "\r\033[K%v", p.bar.String())
}

// Save ends the line the progress bar is drawn on
func (p *Progress) Save() error {
	_, err := fmt.Fprintln(p.w)
	return err
}
