// Package flagx contains helpers for letting several independent
// components parse their own subset of the process arguments.
package flagx

import (
	"strings"

	"github.com/spf13/pflag"
)

// ConfigFileFlags are the argument spellings that select a config file.
var ConfigFileFlags = []string{"-c", "--config"}

// FilterArgs returns only the allowed flags (and their values) from args.
//
// Both "-c file" and "--config=file" forms are understood. A value is taken
// from the following argument only when it does not itself start with '-'.
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFile extracts the config file path given via -c or --config.
// It returns an empty string when neither is present.
func ConfigFile(args []string) string {
	var path string

	fs := pflag.NewFlagSet("config-file", pflag.ContinueOnError)
	fs.StringVarP(&path, "config", "c", "", "path to config file (JSON or YAML)")
	_ = fs.Parse(FilterArgs(args, ConfigFileFlags))

	return path
}
