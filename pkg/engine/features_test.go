package engine

import "testing"

func TestFeaturesListReturnsOneRowPerCalculator(t *testing.T) {
	rows, err := FeaturesList([]float64{1, 2, 3, 4, 5}, []string{"mean", "maximum"})
	if err != nil {
		t.Fatalf("features list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "mean" || rows[0].Value != 3 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Name != "maximum" || rows[1].Value != 5 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestFeaturesListRejectsEmptySeries(t *testing.T) {
	if _, err := FeaturesList(nil, []string{"mean"}); err == nil {
		t.Fatalf("expected error for empty series")
	}
}
