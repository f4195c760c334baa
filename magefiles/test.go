//go:build mage

package main

import (
	"flag"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const coverProfile = "coverage.out"

// Test groups test targets (all, unit, cover).
type Test mg.Namespace

// All runs every test with the race detector.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Unit runs the tests uncached. Pass --run PATTERN after the target to
// select tests, e.g. "mage test:unit --run TestMove".
func (Test) Unit() error {
	fs := flag.NewFlagSet("test:unit", flag.ContinueOnError)
	run := fs.String("run", "", "only run tests matching this pattern")
	parseTargetFlags(fs)

	args := []string{"test", "-count=1", "-v"}
	if *run != "" {
		args = append(args, "-run", *run)
	}
	return sh.RunV(binGo, append(args, "./...")...)
}

// Cover runs every test and writes a coverage profile.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverProfile)
}
