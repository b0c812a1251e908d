//go:build tools

package tools

// Tool dependencies were previously tracked here with blank imports.
// mockery v3 is used as an installed binary (not via go run), so no
// import is needed. Run: mockery (from tapmeet-go/) to generate mocks.
