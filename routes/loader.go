package routes

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/* Loader manages the proxy route table.
 * A built-in table covers the provider's API; deployments can remap
 * upstream paths with an override file, without a rebuild.
 */

//go:embed routes.yaml
var defaultRoutes []byte

// Config represents the structure of a routes YAML file
type Config struct {
	Routes []RouteConfig `yaml:"routes"`
}

// RouteConfig represents a single route in the YAML file
type RouteConfig struct {
	Name         string   `yaml:"name"`
	Method       string   `yaml:"method"`
	LocalPath    string   `yaml:"local_path"`
	UpstreamPath string   `yaml:"upstream_path"`
	Query        []string `yaml:"query"`
	Timeout      string   `yaml:"timeout"` // "read" or "write"; defaults by method
}

// Loader holds the loaded routes
type Loader struct {
	routes map[string]*Route
	order  []string
}

// NewLoader creates a new route loader
func NewLoader() *Loader {
	return &Loader{
		routes: make(map[string]*Route),
	}
}

// LoadDefaults parses the built-in route table
func (l *Loader) LoadDefaults() error {
	return l.parse(defaultRoutes)
}

// Load reads and parses a routes override file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading routes file: %w", err)
	}
	return l.parse(data)
}

func (l *Loader) parse(data []byte) error {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing routes YAML: %w", err)
	}

	for _, rc := range config.Routes {
		timeout := rc.Timeout
		if timeout == "" {
			// Reads are cheap, writes get more headroom
			switch rc.Method {
			case "POST", "PUT":
				timeout = "write"
			default:
				timeout = "read"
			}
		}

		route := &Route{
			Name:         rc.Name,
			Method:       rc.Method,
			LocalPath:    rc.LocalPath,
			UpstreamPath: rc.UpstreamPath,
			QueryParams:  rc.Query,
			Timeout:      NewTimeoutClass(timeout),
		}

		if err := route.Validate(); err != nil {
			return fmt.Errorf("validating route: %w", err)
		}
		if _, exists := l.routes[route.Name]; exists {
			return fmt.Errorf("duplicate route name: %s", route.Name)
		}

		l.routes[route.Name] = route
		l.order = append(l.order, route.Name)
	}

	return nil
}

// Get retrieves a route by its name
func (l *Loader) Get(name string) (*Route, error) {
	route, exists := l.routes[name]
	if !exists {
		return nil, fmt.Errorf("route not found: %s", name)
	}
	return route, nil
}

// List returns all loaded routes in declaration order
func (l *Loader) List() []*Route {
	routes := make([]*Route, 0, len(l.order))
	for _, name := range l.order {
		routes = append(routes, l.routes[name])
	}
	return routes
}

// Exists checks if a route name exists
func (l *Loader) Exists(name string) bool {
	_, exists := l.routes[name]
	return exists
}
