package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value of key and where it came from.
func Explain(res *LoadResult, key string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	values, err := flatten(res.Config)
	if err != nil {
		return nil, Source{}, err
	}
	value, ok := values[key]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown key %q", key)
	}
	if src, ok := res.Sources[key]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// Keys returns every configuration key, sorted.
func Keys() []string {
	values, _ := flatten(DefaultConfig())
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render formats the effective config as YAML, annotating each key with
// its source.
func Render(res *LoadResult) (string, error) {
	data, err := yaml.Marshal(res.Config)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		key, _, _ := strings.Cut(line, ":")
		src := Source{Kind: SourceDefault}
		if s, ok := res.Sources[key]; ok {
			src = s
		}
		fmt.Fprintf(&b, "%s  # %s\n", line, src)
	}
	return b.String(), nil
}

func flatten(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
