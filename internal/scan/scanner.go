// Package scan finds chat exports on disk.
package scan

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
)

// ExportPattern matches exports below a root directory.
const ExportPattern = "**/*.txt"

// exportPrefix is the file name prefix the app gives exported chats.
const exportPrefix = "WhatsApp Chat with "

type FileInfo struct {
	Path  string // absolute
	Key   string
	Name  string
	Mtime int64
	Size  int64
}

// ScanRoot lists every export under root. A missing root yields no files.
func ScanRoot(root string) ([]FileInfo, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	matches, err := doublestar.FilepathGlob(filepath.Join(root, ExportPattern), doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	return stat(matches)
}

// Expand resolves command-line arguments to exports. Each argument may be a
// file, a directory (scanned like a root) or a glob such as "chats/**/*.txt".
func Expand(args []string) ([]FileInfo, error) {
	var files []FileInfo
	for _, arg := range args {
		if hasMeta(arg) {
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
			if err != nil {
				return nil, err
			}
			fs, err := stat(matches)
			if err != nil {
				return nil, err
			}
			files = append(files, fs...)
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			fs, err := ScanRoot(arg)
			if err != nil {
				return nil, err
			}
			files = append(files, fs...)
			continue
		}
		fi, err := fileInfo(arg, info)
		if err != nil {
			return nil, err
		}
		files = append(files, fi)
	}
	return dedupe(files), nil
}

// Match reports whether path is an export that ScanRoot(root) would return.
func Match(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	ok, _ := doublestar.PathMatch(ExportPattern, rel)
	return ok
}

// Stat describes a single export file.
func Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return fileInfo(path, info)
}

// ChatName is the display name of an export: the file name without the
// export prefix and extension.
func ChatName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.TrimPrefix(base, exportPrefix)
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// ChatKey derives a stable key from the absolute path: a slug of the chat
// name plus a short name-based UUID so equally named exports do not collide.
func ChatKey(absPath string) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(ChatName(absPath)), "-"), "-")
	if slug == "" {
		slug = "chat"
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(absPath)))
	return slug + "-" + id.String()[:8]
}

func stat(paths []string) ([]FileInfo, error) {
	files := make([]FileInfo, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue // vanished between glob and stat
		}
		fi, err := fileInfo(p, info)
		if err != nil {
			return nil, err
		}
		files = append(files, fi)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func fileInfo(path string, info os.FileInfo) (FileInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Path:  abs,
		Key:   ChatKey(abs),
		Name:  ChatName(abs),
		Mtime: info.ModTime().Unix(),
		Size:  info.Size(),
	}, nil
}

func dedupe(files []FileInfo) []FileInfo {
	seen := make(map[string]struct{}, len(files))
	out := files[:0]
	for _, f := range files {
		if _, ok := seen[f.Path]; ok {
			continue
		}
		seen[f.Path] = struct{}{}
		out = append(out, f)
	}
	return out
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
