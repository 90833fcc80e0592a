package index

import (
	"path/filepath"
	"strings"
)

// skipDirs are directory names never descended into during a scan.
var skipDirs = map[string]bool{
	".git":            true,
	".hg":             true,
	".svn":            true,
	"node_modules":    true,
	"vendor":          true,
	"target":          true,
	"build":           true,
	"dist":            true,
	"__pycache__":     true,
	".pytest_cache":   true,
	".venv":           true,
	"venv":            true,
	".gradle":         true,
	".idea":           true,
	".vscode":         true,
	".sightglass":     true,
	".claude":         true,
	".cache":          true,
}

// skipSuffixes are file suffixes excluded from the content cache: lockfiles,
// minified assets, and common binary formats the null-byte check would catch
// anyway but are cheaper to reject by name.
var skipSuffixes = []string{
	".min.js", ".min.css", ".map", ".lock",
	".png", ".jpg", ".jpeg", ".gif", ".ico", ".svg", ".webp",
	".woff", ".woff2", ".ttf", ".eot", ".otf",
	".zip", ".tar", ".gz", ".bz2", ".xz", ".7z", ".jar",
	".exe", ".dll", ".so", ".dylib", ".a", ".o", ".class", ".pyc",
	".pdf", ".doc", ".docx", ".xls", ".xlsx",
	".db", ".sqlite", ".sqlite3",
	".mp3", ".mp4", ".wav", ".avi", ".mov",
}

// ShouldSkipDir reports whether a directory should be pruned from the walk.
func ShouldSkipDir(name string) bool {
	return skipDirs[name]
}

// ShouldSkipFile reports whether a file is excluded from indexing by name.
func ShouldSkipFile(relPath string) bool {
	lower := strings.ToLower(filepath.ToSlash(relPath))
	base := filepath.Base(lower)
	if base == "go.sum" || base == "package-lock.json" || base == "yarn.lock" {
		return true
	}
	for _, suffix := range skipSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// IsBinary checks for null bytes in the first 512 bytes, the same heuristic
// git uses.
func IsBinary(content []byte) bool {
	n := min(len(content), 512)
	for i := range n {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
