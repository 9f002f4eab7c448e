//go:build gojson

package benchmarks_test

// Run with -tags gojson to benchmark the goccy/go-json token driver.
import _ "github.com/reoring/schemabind/source"
