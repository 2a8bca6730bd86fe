package metrics

import (
	"errors"
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WriteFitnessPlot draws best and mean fitness per generation to
// fitness.png and returns its path.
func (w *Writer) WriteFitnessPlot(records []GenerationRecord) (string, error) {
	if len(records) == 0 {
		return "", errors.New("no generations to plot")
	}

	p := plot.New()
	p.Title.Text = "Fitness over generations"
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness (mean score)"

	bestPts := make(plotter.XYs, len(records))
	meanPts := make(plotter.XYs, len(records))
	for i, r := range records {
		bestPts[i].X = float64(r.Generation)
		bestPts[i].Y = r.BestFitness
		meanPts[i].X = float64(r.Generation)
		meanPts[i].Y = r.MeanFitness
	}

	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return "", fmt.Errorf("best fitness line: %w", err)
	}
	meanLine, err := plotter.NewLine(meanPts)
	if err != nil {
		return "", fmt.Errorf("mean fitness line: %w", err)
	}
	meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(bestLine, meanLine)
	p.Legend.Add("best", bestLine)
	p.Legend.Add("mean", meanLine)
	p.Legend.Top = true
	p.Legend.Left = true

	path := filepath.Join(w.baseDir, "fitness.png")
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return "", fmt.Errorf("failed to save fitness plot: %w", err)
	}
	return path, nil
}
