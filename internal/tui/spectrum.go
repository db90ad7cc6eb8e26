// SPDX-License-Identifier: MIT
// Package tui renders live analysis frames in the terminal: a spectrum
// bar plot with a centroid marker, per-band levels, and a movable bin
// probe. The view is the single snapshot consumer while it runs.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"specmon/internal/analysis"
)

const (
	refreshInterval = 33 * time.Millisecond // ~30 fps
	plotFloorDB     = -120.0
	plotCeilDB      = 0.0
)

var (
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065"))
	centroidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	probeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFDF5F")).Bold(true)
	cueOnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFDF5")).Background(lipgloss.Color("#25A065")).Padding(0, 1)
	cueOffStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Padding(0, 1)
)

// CueRule fires when the peak level inside a frequency range exceeds a
// decibel threshold. Rules are plain data so callers can swap in their
// own set instead of hard-coding range checks.
type CueRule struct {
	Name   string
	LowHz  float64
	HighHz float64
	MinDB  float64
}

// DefaultCueRules covers the broad low/mid/high split.
func DefaultCueRules() []CueRule {
	return []CueRule{
		{Name: "low", LowHz: 20, HighHz: 250, MinDB: -40},
		{Name: "mid", LowHz: 250, HighHz: 2000, MinDB: -40},
		{Name: "high", LowHz: 2000, HighHz: 20000, MinDB: -40},
	}
}

// active reports whether the rule fires given the band level computed
// over its frequency range.
func (r CueRule) active(level analysis.BandLevel) bool {
	return level.PeakDB >= r.MinDB
}

// cueRuleBands converts cue rules into the band set fed to
// ComputeBandLevels.
func cueRuleBands(cues []CueRule) []analysis.FrequencyBand {
	bands := make([]analysis.FrequencyBand, len(cues))
	for i, cue := range cues {
		bands[i] = analysis.FrequencyBand{Name: cue.Name, LowHz: cue.LowHz, HighHz: cue.HighHz}
	}
	return bands
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// SpectrumModel is the Bubble Tea model for the live spectrum view.
type SpectrumModel struct {
	monitor *analysis.Monitor

	cues      []CueRule
	cueBands  []analysis.FrequencyBand
	cueLevels []analysis.BandLevel // reused per frame

	bands      []analysis.FrequencyBand
	bandLevels []analysis.BandLevel // reused per frame

	frame  *analysis.SpectralFrame
	width  int
	height int
	ready  bool
	paused bool

	probeBin  int
	showProbe bool
}

// NewSpectrumModel creates the spectrum view bound to a monitor.
func NewSpectrumModel(monitor *analysis.Monitor) SpectrumModel {
	cues := DefaultCueRules()
	bands := analysis.DefaultBands(monitor.Mapper().Nyquist())
	return SpectrumModel{
		monitor:    monitor,
		cues:       cues,
		cueBands:   cueRuleBands(cues),
		cueLevels:  make([]analysis.BandLevel, len(cues)),
		bands:      bands,
		bandLevels: make([]analysis.BandLevel, len(bands)),
	}
}

// Init starts the refresh loop.
func (m SpectrumModel) Init() tea.Cmd {
	return tick()
}

func (m SpectrumModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case tickMsg:
		if !m.paused {
			m.frame = m.monitor.LatestSnapshot()
		}
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))):
			return m, tea.Quit

		case key.Matches(msg, key.NewBinding(key.WithKeys(" "))):
			m.paused = !m.paused

		case key.Matches(msg, key.NewBinding(key.WithKeys("p"))):
			m.showProbe = !m.showProbe

		case key.Matches(msg, key.NewBinding(key.WithKeys("left", "h"))):
			m.probeBin = m.monitor.Mapper().ClampBin(m.probeBin - 1)

		case key.Matches(msg, key.NewBinding(key.WithKeys("right", "l"))):
			m.probeBin = m.monitor.Mapper().ClampBin(m.probeBin + 1)

		case key.Matches(msg, key.NewBinding(key.WithKeys("shift+left", "H"))):
			m.probeBin = m.monitor.Mapper().ClampBin(m.probeBin - 16)

		case key.Matches(msg, key.NewBinding(key.WithKeys("shift+right", "L"))):
			m.probeBin = m.monitor.Mapper().ClampBin(m.probeBin + 16)
		}
	}

	return m, nil
}

// View renders the spectrum plot, cue row, and status lines.
func (m SpectrumModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.frame == nil {
		return "Waiting for audio..."
	}

	plotWidth := m.width
	if plotWidth < 16 {
		plotWidth = 16
	}
	plotHeight := m.height - 6
	if plotHeight < 4 {
		plotHeight = 4
	}

	mapper := m.monitor.Mapper()

	var sb strings.Builder
	sb.WriteString(m.renderPlot(plotWidth, plotHeight, mapper))
	sb.WriteString("\n")
	sb.WriteString(m.renderCues(mapper))
	sb.WriteString("\n")
	sb.WriteString(m.renderBands(mapper))
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus(mapper))
	return sb.String()
}

// renderPlot draws the magnitude bars top-down with the centroid column
// highlighted. Each column shows the loudest bin it covers, in dB.
func (m SpectrumModel) renderPlot(width, height int, mapper analysis.BinMapper) string {
	mags := m.frame.Magnitudes
	binsPerCol := float64(len(mags)) / float64(width)
	if binsPerCol < 1 {
		binsPerCol = 1
	}

	// Column heights in rows.
	levels := make([]int, width)
	for col := 0; col < width; col++ {
		lo := int(float64(col) * binsPerCol)
		hi := int(float64(col+1) * binsPerCol)
		if hi > len(mags) {
			hi = len(mags)
		}
		peak := 0.0
		for k := lo; k < hi; k++ {
			if mags[k] > peak {
				peak = mags[k]
			}
		}
		db := analysis.LinearToDecibel(peak)
		frac := (db - plotFloorDB) / (plotCeilDB - plotFloorDB)
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		levels[col] = int(math.Round(frac * float64(height)))
	}

	// The centroid marker column mirrors the frequency axis: its
	// horizontal position is centroid/nyquist of the plot width.
	centroidCol := -1
	if m.frame.Centroid > 0 {
		centroidCol = int(m.frame.Centroid / mapper.Nyquist() * float64(width))
		if centroidCol >= width {
			centroidCol = width - 1
		}
	}
	probeCol := -1
	if m.showProbe {
		probeCol = int(float64(m.probeBin) / float64(len(mags)) * float64(width))
		if probeCol >= width {
			probeCol = width - 1
		}
	}

	var sb strings.Builder
	for row := height; row > 0; row-- {
		for col := 0; col < width; col++ {
			switch {
			case col == centroidCol:
				sb.WriteString(centroidStyle.Render("│"))
			case col == probeCol:
				sb.WriteString(probeStyle.Render("┊"))
			case levels[col] >= row:
				sb.WriteString(barStyle.Render("█"))
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (m SpectrumModel) renderCues(mapper analysis.BinMapper) string {
	levels := analysis.ComputeBandLevels(m.cueLevels, m.frame, mapper, m.cueBands)
	parts := make([]string, 0, len(m.cues))
	for i, cue := range m.cues {
		if cue.active(levels[i]) {
			parts = append(parts, cueOnStyle.Render(cue.Name))
		} else {
			parts = append(parts, cueOffStyle.Render(cue.Name))
		}
	}
	return strings.Join(parts, " ")
}

// renderBands shows the peak level per standard band.
func (m SpectrumModel) renderBands(mapper analysis.BinMapper) string {
	levels := analysis.ComputeBandLevels(m.bandLevels, m.frame, mapper, m.bands)
	parts := make([]string, 0, len(levels))
	for _, level := range levels {
		parts = append(parts, fmt.Sprintf("%s %.0f dB", level.Band.Name, level.PeakDB))
	}
	return infoStyle.Render(strings.Join(parts, " | "))
}

func (m SpectrumModel) renderStatus(mapper analysis.BinMapper) string {
	status := fmt.Sprintf("centroid: %.1f Hz | frames: %d | %.0f Hz / fft %d",
		m.frame.Centroid, m.monitor.FramesAnalyzed(), m.monitor.SampleRate(), m.monitor.FFTSize())
	if m.paused {
		status += " | PAUSED"
	}
	if m.showProbe {
		status += "\n" + probeStyle.Render(analysis.ProbeBin(m.frame, mapper, m.probeBin))
	} else {
		status += "\n←/→: probe bin (p to show) • space: pause • q: quit"
	}
	return status
}

// StartSpectrumUI runs the live spectrum view until the user quits.
func StartSpectrumUI(monitor *analysis.Monitor) error {
	p := tea.NewProgram(
		NewSpectrumModel(monitor),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
