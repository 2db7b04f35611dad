package experiment

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
)

// Plot renders a line chart of the value error after each episode of
// each result as an HTML page to w. Results without a value error are
// left out of the chart.
func Plot(results []Result, w io.Writer) error {
	numEpisodes := 0
	for _, result := range results {
		if len(result.Errors) > numEpisodes {
			numEpisodes = len(result.Errors)
		}
	}
	if numEpisodes == 0 {
		return errors.New("plot: no value errors to plot")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Value error",
			Subtitle: "RMSE of the estimated state values after each episode",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "RMSE"}),
	)

	episodes := make([]string, numEpisodes)
	for i := range episodes {
		episodes[i] = fmt.Sprintf("%d", i+1)
	}
	line.SetXAxis(episodes)

	for _, result := range results {
		if len(result.Errors) == 0 {
			continue
		}

		items := make([]opts.LineData, 0, len(result.Errors))
		for _, e := range result.Errors {
			items = append(items, opts.LineData{Value: e})
		}
		line.AddSeries(result.Name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)
	if err := page.Render(w); err != nil {
		return errors.Wrap(err, "plot: could not render chart")
	}
	return nil
}
