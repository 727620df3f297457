package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"

	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

// DefaultPattern selects decoded-record exports inside a directory.
const DefaultPattern = "*.jsonl"

// Discover resolves a source argument to a naturally sorted file list.
// The source may be a single file, a directory (files matching pattern), or
// a glob such as "captures/**/*.jsonl".
// Discover 将输入参数解析为自然排序的文件列表。
func Discover(src, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	var files []string
	if hasMeta(src) {
		matches, err := doublestar.FilepathGlob(src, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", mcaperrors.ErrInvalidFilePath, src, err)
		}
		files = matches
	} else {
		info, err := os.Stat(src)
		if err != nil {
			return nil, mcaperrors.NewFileError(src, err)
		}
		if info.IsDir() {
			matches, err := doublestar.FilepathGlob(filepath.Join(src, pattern), doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", mcaperrors.ErrInvalidFilePath, pattern, err)
			}
			files = matches
		} else {
			ok, err := doublestar.Match(pattern, filepath.Base(src))
			if err != nil || !ok {
				return nil, fmt.Errorf("%w: %s does not match %s", mcaperrors.ErrInvalidFilePath, src, pattern)
			}
			files = []string{src}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no input files in %s", mcaperrors.ErrFileNotFound, src)
	}
	SortNatural(files)
	return files, nil
}

// SortNatural orders paths so that "run2" sorts before "run10".
// SortNatural 以自然顺序排序路径。
func SortNatural(paths []string) {
	sort.Sort(natural.StringSlice(paths))
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
