package tui

import (
	"fmt"
	"sort"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/pitlane/internal/laptime"
	"github.com/tinytelemetry/pitlane/internal/model"
)

// bestLapBarFloorMs keeps the slowest driver's bar visible.
const bestLapBarFloorMs = 250

type driverBest struct {
	Driver string
	Ms     int64
}

// bestLaps returns each driver's fastest timed lap, fastest first.
func bestLaps(laps []model.Lap) []driverBest {
	best := make(map[string]int64)
	for _, lap := range laps {
		if lap.LapTimeMs == nil || *lap.LapTimeMs <= 0 || lap.Driver == "" {
			continue
		}
		if cur, ok := best[lap.Driver]; !ok || *lap.LapTimeMs < cur {
			best[lap.Driver] = *lap.LapTimeMs
		}
	}

	out := make([]driverBest, 0, len(best))
	for driver, ms := range best {
		out = append(out, driverBest{Driver: driver, Ms: ms})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ms != out[j].Ms {
			return out[i].Ms < out[j].Ms
		}
		return out[i].Driver < out[j].Driver
	})
	return out
}

// barHeights maps best laps to bar values: margin over the slowest best
// lap plus a floor, so faster drivers get taller bars.
func barHeights(best []driverBest) []float64 {
	if len(best) == 0 {
		return nil
	}
	slowest := best[len(best)-1].Ms
	values := make([]float64, len(best))
	for i, b := range best {
		values[i] = float64(slowest-b.Ms) + bestLapBarFloorMs
	}
	return values
}

// renderBestLapChart draws the best-lap bar chart. It returns "" when no
// lap has a time or the area is too small.
func renderBestLapChart(laps []model.Lap, width, height int) string {
	best := bestLaps(laps)
	if len(best) == 0 || width < 10 || height < 4 {
		return ""
	}

	const gap = 1
	barWidth := 3
	fit := (width + gap) / (barWidth + gap)
	if fit < len(best) {
		barWidth = 1
		fit = (width + gap) / (barWidth + gap)
	}
	if fit < len(best) {
		best = best[:fit]
	}

	values := barHeights(best)
	chartWidth := len(best)*(barWidth+gap) - gap

	bc := barchart.New(chartWidth, height-1,
		barchart.WithBarGap(gap),
		barchart.WithBarWidth(barWidth),
	)
	for i, b := range best {
		style := chartBarStyle
		if i == 0 {
			style = chartFastestStyle
		}
		bc.Push(barchart.BarData{
			Label: b.Driver,
			Values: []barchart.BarValue{
				{Name: b.Driver, Value: values[i], Style: style},
			},
		})
	}
	bc.Draw()

	fastest := best[0]
	legend := placeholderStyle.Render(fmt.Sprintf("Best laps  fastest %s %s", fastest.Driver, laptime.FormatMillis(fastest.Ms)))

	return lipgloss.JoinVertical(lipgloss.Left, legend, bc.View())
}
