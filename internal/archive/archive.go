// Package archive bundles a rendered output tree into a single compressed
// artifact for distribution. The archive is deterministic: file order is
// sorted, timestamps and ownership are fixed, so archiving an unchanged tree
// yields identical bytes.
package archive

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"git.home.luguber.info/inful/apiforge/internal/errors"
)

// epoch is the fixed modification time stamped on every archive entry.
var epoch = time.Unix(0, 0).UTC()

// Create writes a zstd-compressed tar of srcDir to destPath. Paths inside
// the archive are relative to srcDir and use forward slashes.
func Create(srcDir, destPath string) error {
	files, err := collectFiles(srcDir)
	if err != nil {
		return err
	}

	out, err := os.Create(destPath)
	if err != nil {
		return errors.WriteFailed(destPath, err)
	}
	defer out.Close()

	zw, err := zstd.NewWriter(out)
	if err != nil {
		return errors.InternalError("zstd writer init failed", err)
	}
	tw := tar.NewWriter(zw)

	for _, rel := range files {
		if err := addFile(tw, srcDir, rel); err != nil {
			_ = tw.Close()
			_ = zw.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return errors.WriteFailed(destPath, err)
	}
	if err := zw.Close(); err != nil {
		return errors.WriteFailed(destPath, err)
	}
	return nil
}

// List returns the file paths inside an archive, in stored order.
func List(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.InputNotFound(path, err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, errors.MalformedInput(path, err)
	}
	defer zr.Close()

	var names []string
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.MalformedInput(path, err)
		}
		names = append(names, hdr.Name)
	}
	return names, nil
}

// Extract unpacks an archive into destDir.
func Extract(path, destDir string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.InputNotFound(path, err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return errors.MalformedInput(path, err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.MalformedInput(path, err)
		}
		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.WriteFailed(target, err)
		}
		out, err := os.Create(target)
		if err != nil {
			return errors.WriteFailed(target, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			_ = out.Close()
			return errors.WriteFailed(target, err)
		}
		if err := out.Close(); err != nil {
			return errors.WriteFailed(target, err)
		}
	}
}

func collectFiles(srcDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.InputNotFound(srcDir, err)
	}
	sort.Strings(files)
	return files, nil
}

func addFile(tw *tar.Writer, srcDir, rel string) error {
	path := filepath.Join(srcDir, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	if err != nil {
		return errors.InputNotFound(path, err)
	}

	hdr := &tar.Header{
		Name:    rel,
		Mode:    0o644,
		Size:    info.Size(),
		ModTime: epoch,
		Format:  tar.FormatPAX,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return errors.WriteFailed(path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.InputNotFound(path, err)
	}
	defer f.Close()
	if _, err := io.Copy(tw, f); err != nil {
		return errors.WriteFailed(path, err)
	}
	return nil
}

// safeJoin rejects entry names that would escape destDir.
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", errors.MalformedInput(name, nil).WithContext("reason", "path escapes destination")
	}
	return target, nil
}
