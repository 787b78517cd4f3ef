package routes

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Names of routes that get special handling in the HTTP layer.
const (
	RegisterWebhookEndpoint = "register_webhook_endpoint"
)

var pathParamPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

/* Route maps one bridge resource to its upstream counterpart.
 * The proxy attaches credentials and relays; it never rewrites bodies.
 */
type Route struct {
	Name         string
	Method       string
	LocalPath    string
	UpstreamPath string
	QueryParams  []string // query keys passed through verbatim
	Timeout      TimeoutClass
}

// Validate checks if the route configuration is valid
func (r *Route) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	switch r.Method {
	case "GET", "POST", "PUT", "DELETE":
	default:
		return fmt.Errorf("unsupported method %q for route %s", r.Method, r.Name)
	}
	if !strings.HasPrefix(r.LocalPath, "/") {
		return fmt.Errorf("local_path must start with / for route %s", r.Name)
	}
	if !strings.HasPrefix(r.UpstreamPath, "/") {
		return fmt.Errorf("upstream_path must start with / for route %s", r.Name)
	}
	if err := r.Timeout.Validate(); err != nil {
		return fmt.Errorf("invalid timeout for route %s: %w", r.Name, err)
	}
	// Every upstream placeholder must be fillable from the local path
	local := r.PathParams()
	for _, param := range pathParams(r.UpstreamPath) {
		found := false
		for _, l := range local {
			if l == param {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("upstream_path parameter {%s} not present in local_path for route %s", param, r.Name)
		}
	}
	return nil
}

// PathParams returns the placeholder names in the local path, e.g. "id"
// for /api/payments/{id}.
func (r *Route) PathParams() []string {
	return pathParams(r.LocalPath)
}

func pathParams(path string) []string {
	matches := pathParamPattern.FindAllStringSubmatch(path, -1)
	params := make([]string, 0, len(matches))
	for _, m := range matches {
		params = append(params, m[1])
	}
	return params
}

/* TimeoutClass bounds a single upstream attempt.
 * Reads get 10s, writes 15s; there are no retries either way.
 */
type TimeoutClass int

const (
	Read TimeoutClass = iota + 1
	Write
)

// String returns the string representation of the timeout class
func (t TimeoutClass) String() string {
	switch t {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "unknown"
	}
}

// NewTimeoutClass creates a TimeoutClass from a string
func NewTimeoutClass(s string) TimeoutClass {
	switch s {
	case "read":
		return Read
	case "write":
		return Write
	default:
		return Read
	}
}

// Validate checks if the timeout class is valid
func (t TimeoutClass) Validate() error {
	if t != Read && t != Write {
		return fmt.Errorf("invalid timeout class: %d", t)
	}
	return nil
}

// Duration returns the wall-clock bound for one upstream attempt
func (t TimeoutClass) Duration() time.Duration {
	if t == Write {
		return 15 * time.Second
	}
	return 10 * time.Second
}
