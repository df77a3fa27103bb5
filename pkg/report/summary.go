package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/teslashibe/go-attention/pkg/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle  = lipgloss.NewStyle().Width(10)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4285f4"))
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

const (
	barWidth    = 30
	chartWidth  = 60
	chartHeight = 8
	recentLimit = 5
)

// Summary renders an end-of-session report.
func Summary(snap session.Snapshot) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Attention session " + snap.ID))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Duration %s · %d cycles · attentive %.0f%%\n\n",
		snap.Elapsed.Round(time.Second), snap.Cycles, snap.Attentive()*100)

	b.WriteString(headerStyle.Render("Gaze"))
	fmt.Fprintf(&b, "  (%d samples, %d blinks)\n", snap.Eye.Samples, snap.Eye.Blinks)
	for _, d := range session.GazeDirections {
		b.WriteString(bar(string(d), snap.Eye.Counts[d], snap.GazeRatio(d)))
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Head tilt"))
	fmt.Fprintf(&b, "  (%d samples)\n", snap.Head.Samples)
	for _, d := range session.TiltDirections {
		b.WriteString(bar(string(d), snap.Head.Counts[d], snap.TiltRatio(d)))
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Audio"))
	fmt.Fprintf(&b, "  (%d samples, mean %.4f, peak %.4f)\n",
		snap.Audio.Samples, snap.Audio.MeanLevel, snap.Audio.PeakLevel)
	if snap.Audio.Anomaly {
		b.WriteString(alertStyle.Render("ANOMALY: voice detected during session"))
	} else {
		b.WriteString("No voice detected")
	}
	b.WriteString("\n")
	b.WriteString(NoiseChart(snap.Audio.NoiseLevels))
	b.WriteString("\n")

	if n := len(snap.Actions); n > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Recent events"))
		b.WriteString("\n")
		start := max(0, n-recentLimit)
		for _, a := range snap.Actions[start:] {
			fmt.Fprintf(&b, "%s %s\n", subtleStyle.Render(a.Time.Format("15:04:05")), a.Message)
		}
	}

	return b.String()
}

func bar(label string, count int, ratio float64) string {
	filled := int(ratio*barWidth + 0.5)
	return labelStyle.Render(label) +
		barStyle.Render(strings.Repeat("█", filled)) +
		strings.Repeat("░", barWidth-filled) +
		fmt.Sprintf(" %4d %5.1f%%\n", count, ratio*100)
}

// NoiseChart plots the recorded RMS levels.
func NoiseChart(levels []float64) string {
	if len(levels) == 0 {
		return subtleStyle.Render("No audio samples")
	}
	data := levels
	if len(data) == 1 {
		data = []float64{levels[0], levels[0]}
	}
	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Caption("noise level (rms)"),
	)
}
