//go:build mage

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// targetArgs holds the arguments after the mage target name. Mage passes
// only positional parameters to targets, so init moves everything after
// the target out of os.Args and targets parse it with a flag.FlagSet.
//
// "mage stats --json" leaves os.Args as ["mage", "stats"] and targetArgs
// as ["--json"].
var targetArgs []string

func init() {
	// os.Args is [binary] [mage-flags...] [target] [target-args...]; the
	// target is the first argument without a leading dash.
	target := -1
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "--" {
			break
		}
		if os.Args[i] != "" && os.Args[i][0] != '-' {
			target = i
			break
		}
	}
	if target < 0 || target+1 >= len(os.Args) {
		return
	}
	targetArgs = os.Args[target+1:]
	os.Args = os.Args[:target+1]
}

// parseTargetFlags parses targetArgs into fs. --help exits cleanly; any
// other parse error exits with status 1.
func parseTargetFlags(fs *flag.FlagSet) {
	err := fs.Parse(targetArgs)
	if err == nil {
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
