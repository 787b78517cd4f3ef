package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ralborta/cucuru-bridge/routes"
)

/* validate-routes - Standalone CLI tool to validate a proxy routes file
 * Usage: go run cmd/validate-routes/main.go [routes.yaml]
 * Without an argument it validates the built-in route table.
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	loader := routes.NewLoader()

	var err error
	if len(os.Args) > 1 {
		fmt.Printf("Validating routes file: %s\n", os.Args[1])
		err = loader.Load(os.Args[1])
	} else {
		fmt.Println("Validating built-in route table")
		err = loader.LoadDefaults()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loadedRoutes := loader.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d route(s):\n", len(loadedRoutes))

	for i, route := range loadedRoutes {
		fmt.Printf("\n%d. Route: %s\n", i+1, route.Name)
		fmt.Printf("   %s %s -> %s\n", route.Method, route.LocalPath, route.UpstreamPath)
		if len(route.QueryParams) > 0 {
			fmt.Printf("   Query:   %s\n", strings.Join(route.QueryParams, ", "))
		}
		fmt.Printf("   Timeout: %s (%s)\n", route.Timeout, route.Timeout.Duration())
	}

	fmt.Printf("\n✓ All routes are valid!\n")
}
