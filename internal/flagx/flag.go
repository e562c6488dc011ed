// Package flagx lets several components parse their own flags out of one
// command line without tripping over each other.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigFileEnv names the environment variable consulted when no -c/-config
// flag is given.
const ConfigFileEnv = "FE_CONFIG"

// FilterArgs returns the arguments that belong to allowedFlags, keeping
// flag values that follow as a separate argument.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
func FilterArgs(args []string, allowedFlags []string) []string {
	matched, _ := SplitArgs(args, allowedFlags, nil)
	return matched
}

// SplitArgs partitions args into the allowed flags (with their values) and
// everything else, in original order. Flags listed in boolFlags never
// consume the following argument, so "-op alice" keeps "alice" in rest.
func SplitArgs(args []string, allowedFlags []string, boolFlags []string) (matched, rest []string) {
	allowed := toSet(allowedFlags)
	bools := toSet(boolFlags)

	matched = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				matched = append(matched, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			rest = append(rest, arg)
			continue
		}

		matched = append(matched, arg)
		if _, isBool := bools[arg]; isBool {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			matched = append(matched, args[i+1])
			i++
		}
	}

	return matched, rest
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, f := range items {
		set[f] = struct{}{}
	}
	return set
}

// JsonConfigFlags returns the config file path given with -c or -config.
// When neither flag is present it falls back to $FE_CONFIG, and finally to
// an empty string meaning "no file".
func JsonConfigFlags() string {
	return ConfigFile(ConfigFileEnv)
}

// ConfigFile is JsonConfigFlags with a caller-chosen environment variable.
func ConfigFile(env string) string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	if config == "" && env != "" {
		config = os.Getenv(env)
	}

	return config
}
