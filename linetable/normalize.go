package linetable

import "strings"

// Normalize produces a canonical key for a source path so the same file
// is not split across entries differing only by redundant path syntax.
// It is purely textual: no filesystem access is performed, and relative
// paths are never resolved against a working directory.
//
// Rules, applied left to right over the path's components:
//   - runs of '/' collapse to a single '/'
//   - '.' components are dropped
//   - '..' removes the previous non-'..' component; if there is no such
//     component to remove, the '..' is preserved rather than rising above
//     the root of a relative path (and dropped outright for an absolute
//     path, which has no parent above its root)
//
// Leading '/' is preserved, and whether the path is relative is preserved.
func Normalize(p string) string {
	absolute := strings.HasPrefix(p, "/")

	var stack []string
	for _, c := range strings.Split(p, "/") {
		switch c {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 && stack[len(stack)-1] != ".." {
				stack = stack[:len(stack)-1]
			} else if !absolute {
				stack = append(stack, "..")
			}
			// Absolute path with nothing to pop: '..' above the root
			// is simply discarded, there is nowhere higher to go.
		default:
			stack = append(stack, c)
		}
	}

	joined := strings.Join(stack, "/")
	if absolute {
		return "/" + joined
	}
	return joined
}
