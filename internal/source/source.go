// Package source reads route manifests from local files and S3.
package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/vango-dev/rrbuilder/internal/errors"
)

// Source is a readable manifest location.
type Source interface {
	// Name labels the manifest in errors and declaration sources.
	Name() string

	// Read returns the manifest bytes.
	Read(ctx context.Context) ([]byte, error)

	// Fingerprint returns a value that changes when the manifest changes.
	Fingerprint(ctx context.Context) (string, error)
}

// Options configures Open.
type Options struct {
	// S3 is the client used for s3:// locations.
	S3 S3API
}

// Open returns the Source for location, which is a file path or
// s3://bucket/key.
func Open(location string, opts Options) (Source, error) {
	if location == "" {
		return nil, errors.New("S003").WithDetail("manifest location is empty")
	}
	if !strings.HasPrefix(location, "s3://") {
		return &File{Path: location}, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, errors.New("S003").WithDetail(location).Wrap(err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, errors.New("S003").WithDetail(fmt.Sprintf("%q needs both a bucket and a key", location))
	}
	if opts.S3 == nil {
		return nil, errors.New("S003").WithDetail("no S3 client configured for " + location)
	}
	return &S3{Client: opts.S3, Bucket: u.Host, Key: key}, nil
}

// File is a manifest on the local filesystem.
type File struct {
	Path string
}

func (f *File) Name() string { return f.Path }

func (f *File) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fileError(f.Path, err)
	}
	return data, nil
}

// Fingerprint combines modification time and size.
func (f *File) Fingerprint(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		return "", fileError(f.Path, err)
	}
	return fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size()), nil
}

func fileError(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.New("S001").WithDetail(path).Wrap(err)
	}
	return errors.New("S002").WithDetail(path + ": " + err.Error()).Wrap(err)
}
