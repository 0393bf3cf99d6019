package main

import (
	"flag"
	"fmt"

	"github.com/coreos/go-semver/semver"
)

const versionString = "0.4.1"

// Version is the release of this build.
var Version = semver.New(versionString)

func runVersion(cfg *config, e env, args []string) error {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	minimum := fs.String("require", "",
		"Fail unless this build is at least the given version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "gridify v%s\n", Version)
	if *minimum != "" {
		want, err := semver.NewVersion(*minimum)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", *minimum, err)
		}
		if Version.LessThan(*want) {
			return fmt.Errorf("version %s is older than required %s", Version, want)
		}
	}
	return nil
}
