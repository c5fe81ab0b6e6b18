// Package plot renders objective-space scatter charts of optimization
// results as standalone HTML pages.
package plot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/policyevo/policyevo/pkg/evolution"
	"github.com/policyevo/policyevo/pkg/outcomes"
)

// ErrNothingToPlot is returned when every series is empty.
var ErrNothingToPlot = errors.New("nothing to plot")

// Series is one named set of points drawn with a single symbol.
type Series struct {
	Name       string
	Points     []evolution.Point
	Symbol     string
	SymbolSize int
}

// ResultSeries splits a run's final population into the elite tier and the
// remaining policies.
func ResultSeries(result *evolution.Result) []Series {
	var rest []evolution.Point
	for _, p := range result.Population {
		if p.Rank != evolution.EliteTier {
			rest = append(rest, p)
		}
	}
	return []Series{
		{Name: "Population", Points: rest, Symbol: "circle", SymbolSize: 4},
		{Name: "Elite", Points: result.Elite, Symbol: "triangle", SymbolSize: 10},
	}
}

// AssignmentSeries scores explicit treatment vectors, such as the output of
// a blend sweep, and returns them as a series.
func AssignmentSeries(name string, po *outcomes.PotentialOutcomes, assignments [][]bool) Series {
	points := make([]evolution.Point, len(assignments))
	for i, a := range assignments {
		policy := evolution.NewPolicy(a)
		policy.Evaluate(po)
		points[i] = evolution.Point{Utility1: policy.Utility1(), Utility2: policy.Utility2()}
	}
	return Series{Name: name, Points: points, Symbol: "diamond", SymbolSize: 8}
}

// Render writes a scatter chart of utility1 against utility2 to w.
func Render(w io.Writer, title string, series ...Series) error {
	total := 0
	for _, s := range series {
		total += len(s.Points)
	}
	if total == 0 {
		return fmt.Errorf("%w: %s", ErrNothingToPlot, title)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "utility1",
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "utility2",
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}))

	for _, s := range series {
		data := make([]opts.ScatterData, len(s.Points))
		for i, p := range s.Points {
			data[i] = opts.ScatterData{
				Value:      []float64{p.Utility1, p.Utility2},
				Symbol:     s.Symbol,
				SymbolSize: s.SymbolSize,
			}
		}
		scatter.AddSeries(s.Name, data)
	}
	scatter.SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		charts.WithEmphasisOpts(opts.Emphasis{}),
	)

	return scatter.Render(w)
}

// RenderFile writes the chart to the file at path.
func RenderFile(path, title string, series ...Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Render(f, title, series...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
