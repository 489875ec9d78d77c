//go:build tools
// +build tools

package tools

// Tool dependencies tracked in go.mod. Not imported by application code.
// benchstat compares runs of the package benchmarks (go test -bench . ./internal/...);
// mockery generates testify mocks for port interfaces such as worker.Purger.

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
	_ "github.com/pressly/goose/v3/cmd/goose"
	_ "github.com/swaggo/swag/cmd/swag"
	_ "github.com/vektra/mockery/v2"
	_ "golang.org/x/perf/cmd/benchstat"
)
