package boot

import (
	"flag"
	"os"
	"strings"
)

// ParseFlags parses the command line flags and also checks environment
// variables, with the provided prefix, for any flags not set on the command line.
func ParseFlags(envPrefix string) {
	flag.Parse()
	set := make(map[string]struct{})
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = struct{}{}
	})
	flag.VisitAll(func(f *flag.Flag) {
		if _, ok := set[f.Name]; ok {
			return
		}
		name := envPrefix + strings.Replace(strings.ToUpper(f.Name), ".", "_", -1)
		if v := os.Getenv(name); v != "" {
			f.Value.Set(v)
		}
	})
}
