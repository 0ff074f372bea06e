package peer

import (
	"path"
	"strings"
)

// NormalizePath strips trailing slashes, except for the root, and makes the
// path absolute. "/a/b/" and "/a/b" are the same path.
func NormalizePath(p string) string {
	if p == "" || p[0] != '/' {
		p = "/" + p
	}

	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}

	return p
}

// JoinPath appends name to dir.
func JoinPath(dir, name string) string {
	return path.Join(NormalizePath(dir), name)
}

// ParentPath returns the directory containing p. The parent of "/" is "/".
func ParentPath(p string) string {
	return path.Dir(NormalizePath(p))
}

// BaseName returns the last element of p, or "/" for the root.
func BaseName(p string) string {
	p = NormalizePath(p)
	if p == "/" {
		return "/"
	}

	return path.Base(p)
}

// IsUnder reports whether p is prefix itself or lives below it.
func IsUnder(p, prefix string) bool {
	p = NormalizePath(p)
	prefix = NormalizePath(prefix)
	switch {
	case p == prefix:
		return true
	case prefix == "/":
		return true
	default:
		return strings.HasPrefix(p, prefix+"/")
	}
}

// Rebase replaces the leading prefix of p with to. p must satisfy IsUnder(p, prefix).
func Rebase(p, prefix, to string) string {
	p = NormalizePath(p)
	prefix = NormalizePath(prefix)
	to = NormalizePath(to)
	if p == prefix {
		return to
	}

	rest := strings.TrimPrefix(p, prefix)
	if prefix == "/" {
		rest = p
	}

	if to == "/" {
		return rest
	}

	return to + rest
}
