// Package fileutil holds the small file helpers used when writing run output.
// Package fileutil 提供写入运行输出时使用的文件辅助函数。
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AtomicWriteFile writes data next to filename and renames it into place, so
// readers never see a half-written report.
// AtomicWriteFile 先写入临时文件再重命名为目标文件。
func AtomicWriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename) // #nosec G703 // filepath.Dir cleans the path
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, filename) // #nosec G703 // filename is built by the caller
}

// RunDirName is the per-run directory name, YYYYmmdd_HHMMSS.
func RunDirName(t time.Time) string {
	return t.Format("20060102_150405")
}

// CreateRunDir creates base/<YYYYmmdd_HHMMSS>. If that directory already
// exists a numeric suffix is added.
// CreateRunDir 创建带时间戳的输出目录。
func CreateRunDir(base string, now time.Time) (string, error) {
	if base == "" {
		base = "results"
	}
	if err := os.MkdirAll(filepath.Clean(base), 0o755); err != nil {
		return "", err
	}

	name := RunDirName(now)
	dir := filepath.Join(base, name)
	for i := 1; ; i++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
		if i > 100 {
			return "", fmt.Errorf("cannot create run directory under %s: %w", base, err)
		}
		dir = filepath.Join(base, fmt.Sprintf("%s_%d", name, i))
	}
}
