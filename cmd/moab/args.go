package main

import "strings"

// legacyFlags are two-letter short flags that pflag would otherwise read as
// two bundled one-letter flags.
var legacyFlags = map[string]string{
	"-lf": "--logfile",
	"-pa": "--use_plate_angles",
}

// normalizeArgs rewrites legacy short flags to their long forms. Arguments
// after "--" are left alone.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if long, ok := legacyFlags[name]; ok {
			if hasValue {
				arg = long + "=" + value
			} else {
				arg = long
			}
		}
		out = append(out, arg)
	}
	return out
}
