// Package fetcher opens the city table, point features and topology from
// local files, HTTP or FTP, and loads all three concurrently.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Fetcher downloads remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Options configures the remote fetchers.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Table     TableOptions // parsing of delimited city tables
}

// Opener resolves a source string to its content. Sources are local paths,
// file:// URLs, http(s):// URLs or ftp:// URLs.
type Opener struct {
	http Fetcher
	ftp  Fetcher
}

// NewOpener returns an Opener backed by the HTTP and FTP fetchers.
func NewOpener(opts Options) *Opener {
	return &Opener{
		http: NewHTTPFetcher(HTTPOptions{UserAgent: opts.UserAgent, Timeout: opts.Timeout}),
		ftp:  NewFTPFetcher(FTPOptions{Timeout: opts.Timeout}),
	}
}

// remote returns the fetcher for src, or nil for local sources.
func (o *Opener) remote(src string) Fetcher {
	u, err := url.Parse(src)
	if err != nil {
		return nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return o.http
	case "ftp":
		return o.ftp
	default:
		return nil
	}
}

// Open returns a reader for src. The caller closes it.
func (o *Opener) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	if src == "" {
		return nil, eris.New("fetcher: empty source")
	}
	if f := o.remote(src); f != nil {
		return f.Download(ctx, src)
	}
	file, err := os.Open(localPath(src))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", src)
	}
	return file, nil
}

// Localize returns a local path holding src, downloading remote sources into
// dir under the source's base name.
func (o *Opener) Localize(ctx context.Context, src, dir string) (string, error) {
	f := o.remote(src)
	if f == nil {
		return localPath(src), nil
	}
	u, err := url.Parse(src)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: parse source")
	}
	dest := filepath.Join(dir, filepath.Base(u.Path))
	if _, err := f.DownloadToFile(ctx, src, dest); err != nil {
		return "", eris.Wrapf(err, "fetcher: download %s", src)
	}
	return dest, nil
}

// Ext returns the lowercase extension of a source path or URL path.
func Ext(src string) string {
	if u, err := url.Parse(src); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return strings.ToLower(filepath.Ext(u.Path))
	}
	return strings.ToLower(filepath.Ext(src))
}

func localPath(src string) string {
	if u, err := url.Parse(src); err == nil && u.Scheme == "file" {
		return u.Path
	}
	return src
}

// saveTo copies r into a new file at path.
func saveTo(r io.Reader, path string) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "create file")
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, r)
	if err != nil {
		return n, eris.Wrap(err, "write file")
	}
	return n, nil
}
