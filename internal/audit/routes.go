package audit

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRoutes []byte

// Routes is the allow-list of app route prefixes.
type Routes struct {
	Prefixes []string `yaml:"routes"`
}

func DefaultRoutes() (*Routes, error) {
	return ParseRoutes(defaultRoutes)
}

func LoadRoutes(path string) (*Routes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRoutes(data)
}

func ParseRoutes(data []byte) (*Routes, error) {
	var r Routes
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse routes: %w", err)
	}
	if len(r.Prefixes) == 0 {
		return nil, errors.New("routes file lists no prefixes")
	}
	for _, p := range r.Prefixes {
		if !strings.HasPrefix(p, "/") {
			return nil, fmt.Errorf("route prefix %q must start with /", p)
		}
	}
	return &r, nil
}

// Allows reports whether path falls under one of the prefixes.
func (r *Routes) Allows(path string) bool {
	for _, p := range r.Prefixes {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) && len(path) > len(p) {
				return true
			}
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
