// SPDX-License-Identifier: MIT

// Command bwmdecode runs cross-validated neural decoding over recorded
// sessions and their pseudo sessions, storing every outcome in a local
// database.
//
//	bwmdecode run   --config run.yaml --sessions sessions.yaml
//	bwmdecode batch --config run.yaml --sessions sessions.yaml
//	bwmdecode show  --config run.yaml [run-id]
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/katalvlaran/bwmdecode/failure"
)

// Exit codes.
const (
	exitOK = iota
	exitError
	exitConfiguration
	exitDataShape
	exitNumerical
	exitCoverage
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bwmdecode: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	switch failure.Kind(err) {
	case failure.ErrConfiguration:
		return exitConfiguration
	case failure.ErrDataShape:
		return exitDataShape
	case failure.ErrNumerical:
		return exitNumerical
	case failure.ErrCoverage:
		return exitCoverage
	}
	if errors.Is(err, os.ErrNotExist) {
		return exitConfiguration
	}
	return exitError
}
