package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/debemdeboas/linkpanel/internal/config"
	"github.com/debemdeboas/linkpanel/internal/render"
	"github.com/debemdeboas/linkpanel/internal/site"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
)

// collectCounters sums every int64 counter the render package reported.
func collectCounters(ctx context.Context, reader *sdkmetric.ManualReader) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	counters := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				counters[m.Name] += dp.Value
			}
		}
	}
	return counters, nil
}

func renderSummary(report site.Report, cfg *config.Config, counters map[string]int64) string {
	rows := [][2]string{
		{"Build", report.BuildID},
		{"Pages", fmt.Sprintf("%d", report.Pages)},
		{"Output", cfg.Build.OutputDir},
		{"Written", humanize.IBytes(uint64(report.Bytes))},
		{"Duration", report.Duration.Round(time.Millisecond).String()},
		{"Store", cfg.Cache.Backend},
		{"Cache", fmt.Sprintf("%d hits, %d misses, %d skipped",
			counters[render.MetricHits], counters[render.MetricMisses], counters[render.MetricSkips])},
	}

	lines := []string{titleStyle.Render("Build complete")}
	for _, row := range rows {
		lines = append(lines, labelStyle.Render(row[0])+valueStyle.Render(row[1]))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
