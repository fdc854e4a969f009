package jsonconfig

import "testing"

func TestLoadModelProfilesParsesNamedEntries(t *testing.T) {
	doc := []byte(`{
		"daily-retail": {"model": "AutoETS", "params": {"seasonal_period": "7"}},
		"sparse-demand": {"model": "CrostonOptimized", "params": {}}
	}`)
	profiles, err := LoadModelProfiles(doc)
	if err != nil {
		t.Fatalf("load model profiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	retail := profiles["daily-retail"]
	if retail.Model != "AutoETS" || retail.Params["seasonal_period"] != "7" {
		t.Fatalf("unexpected profile: %+v", retail)
	}
}

func TestLoadModelProfilesRejectsMissingModel(t *testing.T) {
	doc := []byte(`{"bad": {"params": {}}}`)
	if _, err := LoadModelProfiles(doc); err == nil {
		t.Fatalf("expected error for profile missing model")
	}
}

func TestLoadModelProfilesRejectsInvalidJSON(t *testing.T) {
	if _, err := LoadModelProfiles([]byte("not json")); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestLoadCVProfilesDefaultsStrategy(t *testing.T) {
	doc := []byte(`{"weekly": {"initial_window": 30, "horizon": 7}}`)
	profiles, err := LoadCVProfiles(doc)
	if err != nil {
		t.Fatalf("load cv profiles: %v", err)
	}
	weekly := profiles["weekly"]
	if weekly.InitialWindow != 30 || weekly.Horizon != 7 || weekly.Strategy != "expanding" {
		t.Fatalf("unexpected profile: %+v", weekly)
	}
}
