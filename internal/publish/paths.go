package publish

import (
	"path/filepath"
	"strings"
)

// CommonPrefix returns the longest common directory prefix of the given
// paths, slash-normalized and including a trailing slash. A single path
// yields its own directory; an empty input yields "".
func CommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	if len(paths) == 1 {
		dir := pathDir(filepath.ToSlash(paths[0]))
		if dir == "" {
			return ""
		}
		return dir + "/"
	}

	segments := strings.Split(pathDir(filepath.ToSlash(paths[0])), "/")
	for _, p := range paths[1:] {
		other := strings.Split(pathDir(filepath.ToSlash(p)), "/")
		if len(other) < len(segments) {
			segments = segments[:len(other)]
		}
		for i := range segments {
			if segments[i] != other[i] {
				segments = segments[:i]
				break
			}
		}
	}
	if len(segments) == 0 || (len(segments) == 1 && segments[0] == "") {
		return ""
	}
	return strings.Join(segments, "/") + "/"
}

// pathDir is path.Dir without the "." result for bare filenames.
func pathDir(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Shorten strips the common prefix from a resolved source path and
// normalizes separators, producing the display path.
func Shorten(p, prefix string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), prefix)
}
