// Package cv implements the cross-validation / backtesting framework
// (§4.I): fold generation with leakage controls, parallel per-fold
// execution, and concatenation-based metric aggregation.
package cv

import (
	"github.com/anofox/tsforge/pkg/engerr"
)

// Strategy selects how each fold's training window grows.
type Strategy int

const (
	Expanding Strategy = iota
	Rolling
)

// Config parameterizes fold generation.
type Config struct {
	N             int
	InitialWindow int
	Horizon       int
	Strategy      Strategy
	MaxWindow     int // 0 disables the cap; rolling uses InitialWindow as the window size
	Gap           int
	Embargo       int
	SkipLength    int // 0 defaults to Horizon
}

// Fold is one train/test split as half-open index ranges into the series.
type Fold struct {
	TrainStart, TrainEnd int
	TestStart, TestEnd   int
}

// GenerateFolds slides a position from InitialWindow to N-Horizon in steps
// of SkipLength (defaulting to Horizon, giving non-overlapping test
// coverage), applying the Gap and Embargo leakage controls at each step.
func GenerateFolds(cfg Config) ([]Fold, error) {
	const op = "cv.GenerateFolds"
	if cfg.N <= 0 || cfg.Horizon <= 0 || cfg.InitialWindow <= 0 {
		return nil, engerr.New(engerr.InvalidArgument, op, "n, horizon, and initial_window must be positive")
	}
	skip := cfg.SkipLength
	if skip <= 0 {
		skip = cfg.Horizon
	}

	var folds []Fold
	prevTestEnd := -1

	for p := cfg.InitialWindow; p <= cfg.N-cfg.Horizon; p += skip {
		trainEnd := p - cfg.Gap
		if trainEnd <= 0 {
			continue
		}

		var trainStart int
		if cfg.Strategy == Expanding {
			trainStart = 0
		} else {
			window := cfg.InitialWindow
			if cfg.MaxWindow > 0 {
				window = cfg.MaxWindow
				if window > p {
					window = p
				}
			}
			trainStart = p - window
			if trainStart < 0 {
				trainStart = 0
			}
		}

		if cfg.Embargo > 0 && prevTestEnd >= 0 {
			embargoEnd := prevTestEnd + cfg.Embargo
			if trainEnd > prevTestEnd && trainEnd < embargoEnd {
				trainEnd = prevTestEnd
			}
		}
		if trainEnd <= trainStart {
			continue
		}

		testEnd := p + cfg.Horizon
		if testEnd > cfg.N {
			testEnd = cfg.N
		}

		folds = append(folds, Fold{
			TrainStart: trainStart,
			TrainEnd:   trainEnd,
			TestStart:  p,
			TestEnd:    testEnd,
		})
		prevTestEnd = testEnd
	}

	if len(folds) < 1 {
		return nil, engerr.New(engerr.InvalidArgument, op, "configuration produced fewer than one fold")
	}
	return folds, nil
}
