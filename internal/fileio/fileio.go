// Package fileio 提供编解码器共用的文件读写：
// 读取时区分“不存在”和其它 IO 错误，写入时先写临时文件再原子替换目标文件。
package fileio

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
)

// DefaultPerm 为新写入文件的权限。
const DefaultPerm os.FileMode = 0o644

var osFs = afero.NewOsFs()

// OsFs 返回基于本地文件系统的 afero.Fs。
func OsFs() afero.Fs {
	return osFs
}

// OrOs 在 fsys 为 nil 时返回本地文件系统。
func OrOs(fsys afero.Fs) afero.Fs {
	if fsys == nil {
		return osFs
	}
	return fsys
}

// ReadFile 读取 path 的全部内容。
// path 不存在时返回 merr.ErrNotFound，其它失败（包括 path 为目录）返回 merr.ErrIOFailure。
func ReadFile(fsys afero.Fs, path string) ([]byte, error) {
	fsys = OrOs(fsys)
	f, err := fsys.Open(path)
	if err != nil {
		return nil, classify(path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, classify(path, err)
	}
	if st.IsDir() {
		return nil, merr.WrapErrIOFailure(path, errors.New("is a directory"))
	}
	data, err := afero.ReadAll(f)
	if err != nil {
		return nil, merr.WrapErrIOFailure(path, err)
	}
	return data, nil
}

// AtomicWrite 将 data 写入 path。
//
// 数据先写入同目录下的临时文件，fsync 后再重命名到 path；
// 任何一步失败都会删除临时文件，path 原有内容保持不变。
func AtomicWrite(fsys afero.Fs, path string, data []byte) error {
	fsys = OrOs(fsys)
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if base == "" {
		return merr.WrapErrIOFailure(path, errors.New("empty file name"))
	}

	tmp, err := afero.TempFile(fsys, dir, "."+base+".tmp-*")
	if err != nil {
		return merr.WrapErrIOFailure(path, err)
	}
	tmpPath := tmp.Name()

	// 写入、同步、关闭依次进行，任一步失败都清理临时文件并返回第一个错误。
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fsys.Remove(tmpPath)
		return merr.WrapErrIOFailure(path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		fsys.Remove(tmpPath)
		return merr.WrapErrIOFailure(path, err)
	}
	if err := tmp.Close(); err != nil {
		fsys.Remove(tmpPath)
		return merr.WrapErrIOFailure(path, err)
	}
	if err := fsys.Chmod(tmpPath, DefaultPerm); err != nil {
		fsys.Remove(tmpPath)
		return merr.WrapErrIOFailure(path, err)
	}
	if err := fsys.Rename(tmpPath, path); err != nil {
		fsys.Remove(tmpPath)
		return merr.WrapErrIOFailure(path, err)
	}

	// 目录同步失败不影响已经完成的替换。
	if d, err := fsys.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}

// Exists 判断 path 是否存在。
func Exists(fsys afero.Fs, path string) bool {
	ok, err := afero.Exists(OrOs(fsys), path)
	return err == nil && ok
}

func classify(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return merr.WrapErrNotFound(path)
	}
	return merr.WrapErrIOFailure(path, err)
}
