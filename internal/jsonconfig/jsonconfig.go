// Package jsonconfig loads named model and cross-validation profiles from a
// JSON document using gjson path extraction, the same style
// pkg/adapters/http.go uses to pull fields out of an arbitrary response body
// without requiring a matching Go struct for every shape a host might send.
// A profile lets a caller say model_profile => 'daily-retail' instead of
// repeating a parameter map at every call site.
package jsonconfig

import (
	"fmt"

	"github.com/anofox/tsforge/pkg/engerr"
	"github.com/anofox/tsforge/pkg/models"
	"github.com/tidwall/gjson"
)

// ModelProfile names a model and the parameters it should be constructed
// with, e.g. {"model": "AutoETS", "params": {"seasonal_period": "7"}}.
type ModelProfile struct {
	Model  string
	Params models.Params
}

// CVProfile names a cross-validation window shape, e.g.
// {"initial_window": 30, "horizon": 7, "strategy": "expanding"}.
type CVProfile struct {
	InitialWindow int
	Horizon       int
	Strategy      string
}

// LoadModelProfiles parses a JSON object of the form
// {"<name>": {"model": "...", "params": {...}}, ...} into named profiles.
func LoadModelProfiles(doc []byte) (map[string]ModelProfile, error) {
	const op = "jsonconfig.LoadModelProfiles"
	if !gjson.ValidBytes(doc) {
		return nil, engerr.New(engerr.InvalidArgument, op, "not valid JSON")
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, engerr.New(engerr.InvalidArgument, op, "expected a top-level JSON object")
	}

	profiles := make(map[string]ModelProfile)
	var parseErr error
	root.ForEach(func(key, value gjson.Result) bool {
		model := value.Get("model").String()
		if model == "" {
			parseErr = engerr.New(engerr.InvalidArgument, op, fmt.Sprintf("profile %q missing \"model\"", key.String()))
			return false
		}
		params := models.Params{}
		value.Get("params").ForEach(func(pk, pv gjson.Result) bool {
			params[pk.String()] = pv.String()
			return true
		})
		profiles[key.String()] = ModelProfile{Model: model, Params: params}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return profiles, nil
}

// LoadCVProfiles parses a JSON object of the form
// {"<name>": {"initial_window": 30, "horizon": 7, "strategy": "expanding"}, ...}.
func LoadCVProfiles(doc []byte) (map[string]CVProfile, error) {
	const op = "jsonconfig.LoadCVProfiles"
	if !gjson.ValidBytes(doc) {
		return nil, engerr.New(engerr.InvalidArgument, op, "not valid JSON")
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, engerr.New(engerr.InvalidArgument, op, "expected a top-level JSON object")
	}

	profiles := make(map[string]CVProfile)
	root.ForEach(func(key, value gjson.Result) bool {
		strategy := value.Get("strategy").String()
		if strategy == "" {
			strategy = "expanding"
		}
		profiles[key.String()] = CVProfile{
			InitialWindow: int(value.Get("initial_window").Int()),
			Horizon:       int(value.Get("horizon").Int()),
			Strategy:      strategy,
		}
		return true
	})
	return profiles, nil
}
