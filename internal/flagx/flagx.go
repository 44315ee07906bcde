// Package flagx lets each component parse only the command-line flags it
// owns, ignoring everyone else's.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// Pick returns the subset of args belonging to the named flags, keeping
// values whether they are attached ("-a=x") or separate ("-a x"). Flags not
// in names are dropped, so a flag.FlagSet fed the result never trips over
// another component's flags.
func Pick(args []string, names ...string) []string {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	picked := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") {
			if eq := strings.IndexByte(arg, '='); eq >= 0 {
				if want[arg[:eq]] {
					picked = append(picked, arg)
				}
				continue
			}
			if want[arg] {
				picked = append(picked, arg)
				if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
					picked = append(picked, args[i+1])
					i++
				}
			}
		}
	}
	return picked
}

// ConfigFile extracts the config file path given via -c or -config, or ""
// when neither is present. Other arguments are ignored, so any component
// may call this without interfering with its own flag parsing.
func ConfigFile() string {
	var path string

	fs := flag.NewFlagSet("configfile", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(Pick(os.Args[1:], "-c", "-config"))

	return path
}
