// Package flagx holds small helpers around command-line flag parsing.
package flagx

import (
	"github.com/spf13/pflag"
)

// ConfigPath extracts the config file path passed via -c or --config.
//
// Only these flags are looked at; everything else in args is ignored, so the
// caller can run its own flag set over the same arguments afterwards.
// If neither flag is present, an empty string is returned.
func ConfigPath(args []string) string {
	var config string

	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	fs.StringVarP(&config, "config", "c", "", "Path to config file")
	_ = fs.Parse(args)

	return config
}
