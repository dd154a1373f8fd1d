package util

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/option"
	_ "github.com/viant/afsc/s3"
)

var FileSystem = afs.New()

func ReadFileBytes(ctx context.Context, filename string) (b []byte, err error) {
	file, err := FileSystem.OpenURL(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer func(file io.Closer) {
		err = errors.Join(err, CloseFile(file))
	}(file)

	buf := &bytes.Buffer{}
	if _, err = io.Copy(buf, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFileBytes replaces the content of filename with data.
func WriteFileBytes(ctx context.Context, filename string, data []byte) (err error) {
	exists, err := FileSystem.Exists(ctx, filename)
	if err != nil {
		return err
	}
	if exists {
		if err = FileSystem.Delete(ctx, filename); err != nil {
			return err
		}
	}
	writer, err := FileSystem.NewWriter(ctx, filename, 0o644, option.NewSkipChecksum(true))
	if err != nil {
		return err
	}
	defer func(writer io.Closer) {
		err = errors.Join(err, CloseFile(writer))
	}(writer)

	_, err = writer.Write(data)
	return err
}

// CreateDir creates the directory and its parents. It does not fail if the
// directory already exists.
func CreateDir(ctx context.Context, dir string) error {
	exists, err := FileSystem.Exists(ctx, dir)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return FileSystem.Create(ctx, dir, os.ModePerm, true)
}

func FileExists(ctx context.Context, filename string) (bool, error) {
	return FileSystem.Exists(ctx, filename)
}

func CloseFile(file io.Closer) error {
	return file.Close()
}

func GetPathType(path string) string {
	if strings.HasPrefix(path, "s3://") {
		return "S3"
	}
	return "os"
}

// PathJoinSafe wrapper around filepath.Join to ensure that paths are correctly constructed
// if the path is a normal OS path, just use filepath.Join
// if the path is S3, trim any trailing slashes and construct it manually from the components
// so that double slashes (e.g. s3://) are preserved.
func PathJoinSafe(elem ...string) string {
	var path string

	switch GetPathType(elem[0]) {
	case "S3":
		basePath := strings.TrimSuffix(elem[0], "/")
		path = basePath + string(filepath.Separator) + filepath.Join(elem[1:]...)
	default:
		path = filepath.Join(elem...)
	}
	return path
}
