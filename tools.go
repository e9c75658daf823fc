//go:build tools

package main

// Pin build-time tooling so `go mod tidy` keeps it in go.mod.
import (
	_ "github.com/swaggo/swag/cmd/swag"
)
