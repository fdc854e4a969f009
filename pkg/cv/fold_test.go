package cv

import "testing"

func TestGenerateFoldsExpandingNonOverlapping(t *testing.T) {
	cfg := Config{N: 20, InitialWindow: 10, Horizon: 2, Strategy: Expanding}
	folds, err := GenerateFolds(cfg)
	if err != nil {
		t.Fatalf("generate folds: %v", err)
	}
	if len(folds) == 0 {
		t.Fatalf("expected at least one fold")
	}
	for _, f := range folds {
		if f.TrainStart != 0 {
			t.Fatalf("expanding strategy must always start training at 0, got %d", f.TrainStart)
		}
		if f.TrainEnd > f.TestStart {
			t.Fatalf("train must end at or before test start: trainEnd=%d testStart=%d", f.TrainEnd, f.TestStart)
		}
		if f.TestEnd-f.TestStart > cfg.Horizon {
			t.Fatalf("test window exceeds horizon")
		}
	}
}

func TestGenerateFoldsRollingWindowBounded(t *testing.T) {
	cfg := Config{N: 50, InitialWindow: 10, Horizon: 5, Strategy: Rolling, MaxWindow: 10}
	folds, err := GenerateFolds(cfg)
	if err != nil {
		t.Fatalf("generate folds: %v", err)
	}
	for _, f := range folds {
		width := f.TrainEnd - f.TrainStart
		if width > cfg.MaxWindow {
			t.Fatalf("rolling window exceeded max: %d > %d", width, cfg.MaxWindow)
		}
	}
}

func TestGenerateFoldsGapInsertsBuffer(t *testing.T) {
	cfg := Config{N: 30, InitialWindow: 10, Horizon: 3, Strategy: Expanding, Gap: 2}
	folds, err := GenerateFolds(cfg)
	if err != nil {
		t.Fatalf("generate folds: %v", err)
	}
	for _, f := range folds {
		if f.TestStart-f.TrainEnd != cfg.Gap {
			t.Fatalf("expected gap of %d between train_end and test_start, got %d", cfg.Gap, f.TestStart-f.TrainEnd)
		}
	}
}

func TestGenerateFoldsExpandingMatchesWorkedExample(t *testing.T) {
	cfg := Config{N: 100, InitialWindow: 50, Horizon: 10, Strategy: Expanding, SkipLength: 10}
	folds, err := GenerateFolds(cfg)
	if err != nil {
		t.Fatalf("generate folds: %v", err)
	}
	want := []Fold{
		{TrainStart: 0, TrainEnd: 50, TestStart: 50, TestEnd: 60},
		{TrainStart: 0, TrainEnd: 60, TestStart: 60, TestEnd: 70},
		{TrainStart: 0, TrainEnd: 70, TestStart: 70, TestEnd: 80},
		{TrainStart: 0, TrainEnd: 80, TestStart: 80, TestEnd: 90},
		{TrainStart: 0, TrainEnd: 90, TestStart: 90, TestEnd: 100},
	}
	if len(folds) != len(want) {
		t.Fatalf("expected exactly %d folds, got %d: %+v", len(want), len(folds), folds)
	}
	for i, f := range folds {
		if f != want[i] {
			t.Fatalf("fold %d = %+v, want %+v", i, f, want[i])
		}
	}
}

func TestGenerateFoldsRejectsDegenerateConfig(t *testing.T) {
	cfg := Config{N: 5, InitialWindow: 10, Horizon: 1}
	if _, err := GenerateFolds(cfg); err == nil {
		t.Fatalf("expected error when fewer than one fold is produced")
	}
}

func TestGenerateFoldsSkipLengthDefaultsToHorizon(t *testing.T) {
	cfg := Config{N: 30, InitialWindow: 10, Horizon: 5}
	folds, err := GenerateFolds(cfg)
	if err != nil {
		t.Fatalf("generate folds: %v", err)
	}
	if len(folds) < 2 {
		t.Skip("not enough folds to check spacing")
	}
	spacing := folds[1].TestStart - folds[0].TestStart
	if spacing != cfg.Horizon {
		t.Fatalf("expected default spacing of %d, got %d", cfg.Horizon, spacing)
	}
}
