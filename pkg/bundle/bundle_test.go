package bundle_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	"github.com/tapestryml/tapestry/internal/assert"
	"github.com/tapestryml/tapestry/pkg/bundle"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func archiveNames(t *testing.T, data []byte) []string {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, hdr.Name)
	}
	return names
}

func TestBundleUpload(t *testing.T) {
	as := assert.New(t)
	ctx := context.Background()

	src := t.TempDir()
	writeFile(t, src, "inference.py", "def model_fn(d): ...\n")
	writeFile(t, src, "lib/postprocess.py", "def output_fn(p): ...\n")

	store := t.TempDir()
	bucketURL := "file://" + store

	b, err := bundle.New(ctx, bucketURL, "code")
	as.Require.NoError(err)
	defer func() { _ = b.Close() }()

	key, err := b.Upload(ctx, &bundle.Spec{
		EntryPoint: "inference.py",
		SourceDir:  src,
	})
	as.Require.NoError(err)
	as.True(strings.HasPrefix(key, "code/"))
	as.True(strings.HasSuffix(key, "/"+bundle.ArchiveName))

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	as.Require.NoError(err)
	defer func() { _ = bucket.Close() }()

	data, err := bucket.ReadAll(ctx, key)
	as.Require.NoError(err)
	as.ElementsMatch(
		[]string{"inference.py", "lib/postprocess.py"},
		archiveNames(t, data),
	)
}

func TestBundleUploadKeysUnique(t *testing.T) {
	as := assert.New(t)
	ctx := context.Background()

	src := t.TempDir()
	writeFile(t, src, "inference.py", "def model_fn(d): ...\n")

	b, err := bundle.New(ctx, "mem://", "code")
	as.Require.NoError(err)
	defer func() { _ = b.Close() }()

	spec := &bundle.Spec{EntryPoint: filepath.Join(src, "inference.py")}
	first, err := b.Upload(ctx, spec)
	as.Require.NoError(err)
	second, err := b.Upload(ctx, spec)
	as.Require.NoError(err)
	as.NotEqual(first, second)
}

func TestBundleStandaloneEntryPoint(t *testing.T) {
	as := assert.New(t)
	ctx := context.Background()

	src := t.TempDir()
	writeFile(t, src, "inference.py", "def model_fn(d): ...\n")
	writeFile(t, src, "requirements.txt", "numpy\n")

	store := t.TempDir()
	b, err := bundle.New(ctx, "file://"+store, "code")
	as.Require.NoError(err)
	defer func() { _ = b.Close() }()

	key, err := b.Upload(ctx, &bundle.Spec{
		EntryPoint:   filepath.Join(src, "inference.py"),
		Dependencies: []string{filepath.Join(src, "requirements.txt")},
	})
	as.Require.NoError(err)

	bucket, err := blob.OpenBucket(ctx, "file://"+store)
	as.Require.NoError(err)
	defer func() { _ = bucket.Close() }()

	data, err := bucket.ReadAll(ctx, key)
	as.Require.NoError(err)
	as.ElementsMatch(
		[]string{"inference.py", "requirements.txt"},
		archiveNames(t, data),
	)
}

func TestBundleErrors(t *testing.T) {
	as := assert.New(t)
	ctx := context.Background()

	b, err := bundle.New(ctx, "mem://", "code")
	as.Require.NoError(err)
	defer func() { _ = b.Close() }()

	t.Run("empty_entry_point", func(t *testing.T) {
		_, err := b.Upload(ctx, &bundle.Spec{})
		as.ErrorIs(err, bundle.ErrEntryPointEmpty)
	})

	t.Run("missing_entry_point", func(t *testing.T) {
		_, err := b.Upload(ctx, &bundle.Spec{
			EntryPoint: filepath.Join(t.TempDir(), "absent.py"),
		})
		as.ErrorIs(err, bundle.ErrEntryPointMissing)
	})

	t.Run("entry_point_outside_source_dir", func(t *testing.T) {
		src := t.TempDir()
		writeFile(t, src, "other.py", "")
		_, err := b.Upload(ctx, &bundle.Spec{
			EntryPoint: "inference.py",
			SourceDir:  src,
		})
		as.ErrorIs(err, bundle.ErrEntryPointMissing)
	})

	t.Run("missing_dependency", func(t *testing.T) {
		src := t.TempDir()
		writeFile(t, src, "inference.py", "")
		_, err := b.Upload(ctx, &bundle.Spec{
			EntryPoint:   filepath.Join(src, "inference.py"),
			Dependencies: []string{filepath.Join(src, "absent.txt")},
		})
		as.ErrorIs(err, bundle.ErrSourceUnreadable)
	})
}
