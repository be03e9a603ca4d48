package pathutil

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

var markdownExts = []string{".md", ".markdown"}

// NormalizePath converts Windows-style separators to the current platform's separator
// and cleans the resulting path. Elsewhere a backslash is a legal file name
// character, so it is only treated as a separator in drive paths like C:\notes.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	if runtime.GOOS == "windows" || hasDriveLetter(p) {
		p = strings.ReplaceAll(p, "\\", "/")
	}
	return filepath.Clean(filepath.FromSlash(p))
}

func hasDriveLetter(p string) bool {
	if len(p) < 3 || p[1] != ':' || p[2] != '\\' {
		return false
	}
	c := p[0] | 0x20
	return c >= 'a' && c <= 'z'
}

// Relative returns target relative to base using forward slashes. Used for
// display labels, so it falls back to the cleaned target when no relative
// path exists.
func Relative(base, target string) string {
	cleanedTarget := NormalizePath(target)
	rel, err := filepath.Rel(NormalizePath(base), cleanedTarget)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(cleanedTarget)
	}
	return filepath.ToSlash(rel)
}

// IsMarkdownFile reports whether name ends in .md or .markdown, ignoring case.
func IsMarkdownFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range markdownExts {
		if ext == e {
			return true
		}
	}
	return false
}

// EnsureMarkdownExt appends .md unless path already has a markdown extension.
func EnsureMarkdownExt(path string) string {
	if path == "" || IsMarkdownFile(path) {
		return path
	}
	return path + ".md"
}

// ArgToPath turns a launch argument into an absolute filesystem path. Both
// plain paths and file:// URLs are accepted.
func ArgToPath(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", nil
	}

	if strings.HasPrefix(strings.ToLower(arg), "file://") {
		u, err := url.Parse(arg)
		if err != nil {
			return "", err
		}
		p := u.Path
		// file:///C:/notes/a.md parses with a leading slash before the drive.
		if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
			p = p[1:]
		}
		arg = p
	}

	return filepath.Abs(NormalizePath(arg))
}

// ExtractMarkdownPath returns the first argument that names a markdown file,
// resolved to an absolute path, or "" if none does.
func ExtractMarkdownPath(args []string) string {
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			continue
		}
		p, err := ArgToPath(a)
		if err != nil || p == "" {
			continue
		}
		if IsMarkdownFile(p) {
			return p
		}
	}
	return ""
}
