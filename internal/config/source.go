package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Section names in the YAML file that do not match their env prefix.
var sectionAliases = map[string]string{
	"openweather":   "WEATHER",
	"positionstack": "GEOCODING",
	"location":      "",
}

// loadFile reads a YAML settings file and flattens it to env-style names:
//
//	openweather:
//	  token: abc      -> WEATHER_TOKEN=abc
//	display:
//	  am_pm: true     -> DISPLAY_AM_PM=true
//	kafka:
//	  brokers: [a, b] -> KAFKA_BROKERS=a,b
func loadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CONFIG_FILE %q: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse CONFIG_FILE %q: %w", path, err)
	}
	out := make(map[string]string)
	flatten(out, "", doc)
	return out, nil
}

func flatten(out map[string]string, prefix string, node map[string]any) {
	for k, v := range node {
		key := strings.ToUpper(k)
		if prefix != "" {
			key = prefix + "_" + key
		} else if alias, ok := sectionAliases[strings.ToLower(k)]; ok {
			key = alias
		}

		switch t := v.(type) {
		case map[string]any:
			flatten(out, key, t)
		case []any:
			parts := make([]string, len(t))
			for i, item := range t {
				parts[i] = fmt.Sprint(item)
			}
			out[key] = strings.Join(parts, ",")
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(t)
		}
	}
}

// lookup resolves a setting from the environment first, then the file.
type lookup struct {
	file map[string]string
}

func (l lookup) raw(name string) (string, bool) {
	if v, ok := os.LookupEnv(name); ok {
		return strings.TrimSpace(v), true
	}
	v, ok := l.file[name]
	return strings.TrimSpace(v), ok
}

func (l lookup) str(name, def string) string {
	if v, _ := l.raw(name); v != "" {
		return v
	}
	return def
}

// optional is like str but an explicitly empty value stays empty.
func (l lookup) optional(name, def string) string {
	if v, ok := l.raw(name); ok {
		return v
	}
	return def
}

func (l lookup) duration(name, def string) (time.Duration, error) {
	s := l.str(name, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", name, d)
	}
	return d, nil
}

func (l lookup) boolean(name string, def bool) (bool, error) {
	s := l.str(name, strconv.FormatBool(def))
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return b, nil
}

func (l lookup) integer(name string, def int) (int, error) {
	s := l.str(name, strconv.Itoa(def))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return n, nil
}

func (l lookup) list(name, def string) []string {
	var out []string
	for _, part := range strings.Split(l.str(name, def), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
