// Package integration contains the end-to-end smoke tests for the testgen
// binary. Tests in this package build the binary and run it against a fake
// generation service and a fake CMake/lcov toolchain.
//
// Run with: go test ./integration/... -v -timeout 120s
package integration
