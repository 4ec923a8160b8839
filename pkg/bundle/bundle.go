// Package bundle packages inference entry-point code into the archive a
// repack step folds into a model artifact, and writes it to a blob bucket.
// Bucket drivers are chosen by the caller through gocloud URL schemes
package bundle

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"gocloud.dev/blob"
)

type (
	// Bundler writes code bundles to a single bucket under a key prefix
	Bundler struct {
		bucket *blob.Bucket
		prefix string
	}

	// Spec names the files folded into a bundle. EntryPoint is relative to
	// SourceDir when a source dir is given, a standalone file otherwise
	Spec struct {
		EntryPoint   string
		SourceDir    string
		Dependencies []string
	}
)

// ArchiveName is the file name of every uploaded bundle
const ArchiveName = "bundle.tar.gz"

var (
	ErrEntryPointEmpty   = errors.New("bundle entry point empty")
	ErrEntryPointMissing = errors.New("bundle entry point not found")
	ErrSourceUnreadable  = errors.New("bundle source unreadable")
	ErrUpload            = errors.New("bundle upload failed")
)

// New opens the bucket at the given gocloud URL. The caller must import the
// driver matching the URL scheme
func New(ctx context.Context, bucketURL, prefix string) (*Bundler, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return &Bundler{bucket: bucket, prefix: prefix}, nil
}

func (b *Bundler) Close() error {
	return b.bucket.Close()
}

// Upload archives the spec and writes it under a fresh unique key,
// returning that key. Repeated uploads of the same spec produce distinct
// keys; bundles are never overwritten in place
func (b *Bundler) Upload(ctx context.Context, spec *Spec) (string, error) {
	data, err := archive(spec)
	if err != nil {
		return "", err
	}

	key := path.Join(b.prefix, uuid.NewString(), ArchiveName)
	if err := b.bucket.WriteAll(ctx, key, data, nil); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}
	return key, nil
}

func archive(spec *Spec) ([]byte, error) {
	if spec.EntryPoint == "" {
		return nil, ErrEntryPointEmpty
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	if err := writeSpec(tw, spec); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSpec(tw *tar.Writer, spec *Spec) error {
	if spec.SourceDir != "" {
		entry := filepath.Join(spec.SourceDir, spec.EntryPoint)
		if _, err := os.Stat(entry); err != nil {
			return fmt.Errorf("%w: %s", ErrEntryPointMissing, entry)
		}
		if err := writeTree(tw, spec.SourceDir, ""); err != nil {
			return err
		}
	} else {
		if _, err := os.Stat(spec.EntryPoint); err != nil {
			return fmt.Errorf("%w: %s", ErrEntryPointMissing, spec.EntryPoint)
		}
		err := writeFile(tw, spec.EntryPoint, filepath.Base(spec.EntryPoint))
		if err != nil {
			return err
		}
	}

	for _, dep := range spec.Dependencies {
		info, err := os.Stat(dep)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrSourceUnreadable, dep)
		}
		if info.IsDir() {
			if err := writeTree(tw, dep, filepath.Base(dep)); err != nil {
				return err
			}
			continue
		}
		if err := writeFile(tw, dep, filepath.Base(dep)); err != nil {
			return err
		}
	}
	return nil
}

func writeTree(tw *tar.Writer, root, prefix string) error {
	err := filepath.WalkDir(root,
		func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			return writeFile(tw, p, path.Join(prefix, filepath.ToSlash(rel)))
		})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSourceUnreadable, root)
	}
	return nil
}

func writeFile(tw *tar.Writer, fsPath, name string) error {
	f, err := os.Open(fsPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSourceUnreadable, fsPath)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSourceUnreadable, fsPath)
	}

	hdr := &tar.Header{
		Name: name,
		Mode: 0o644,
		Size: info.Size(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}
