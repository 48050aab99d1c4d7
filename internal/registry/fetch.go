package registry

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Fetch downloads the tarball of r, verifies it against the published
// checksums and unpacks it into destDir. The leading "package/" directory
// used by npm tarballs is stripped.
//
// Fetch does not clean destDir on failure; callers that need all-or-nothing
// semantics should extract into a staging directory.
func (c *Client) Fetch(ctx context.Context, r *Resolved, destDir string) error {
	archive, err := c.download(ctx, r)
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	n, err := extractTarGz(archive, destDir)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", r, err)
	}
	c.log.Debug("extracted tarball", "package", r.String(), "files", n, "dest", destDir)
	return nil
}

// download streams the tarball to a temp file while hashing it, then checks
// the digest. The caller removes the returned file.
func (c *Client) download(ctx context.Context, r *Resolved) (_ string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Dist.Tarball, nil)
	if err != nil {
		return "", fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.log.Debug("downloading tarball", "package", r.String(), "url", r.Dist.Tarball)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", r, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: tarball for %s", ErrPackageNotFound, r)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of %s returned status %d", r, resp.StatusCode)
	}

	f, err := os.CreateTemp("", "bio-tarball-*.tgz")
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	defer func() {
		f.Close()
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	v, err := newVerifier(r.Dist)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, io.TeeReader(resp.Body, v.h)); err != nil {
		return "", fmt.Errorf("reading download stream: %w", err)
	}
	if err := v.check(); err != nil {
		return "", fmt.Errorf("%s: %w", r, err)
	}
	return f.Name(), nil
}

// verifier checks a tarball against the strongest checksum the registry
// published: the SRI "integrity" field when present, else the sha1 "shasum".
type verifier struct {
	h    hash.Hash
	want []byte
	algo string
}

func newVerifier(d Dist) (*verifier, error) {
	if d.Integrity != "" {
		// SRI strings may list several hashes; the first supported one wins.
		for _, entry := range strings.Fields(d.Integrity) {
			algo, b64, ok := strings.Cut(entry, "-")
			if !ok {
				continue
			}
			want, err := base64.StdEncoding.DecodeString(b64)
			if err != nil {
				return nil, fmt.Errorf("decoding integrity %q: %w", entry, err)
			}
			switch algo {
			case "sha512":
				return &verifier{h: sha512.New(), want: want, algo: algo}, nil
			case "sha1":
				return &verifier{h: sha1.New(), want: want, algo: algo}, nil
			}
		}
	}
	if d.Shasum != "" {
		want, err := hex.DecodeString(d.Shasum)
		if err != nil {
			return nil, fmt.Errorf("decoding shasum %q: %w", d.Shasum, err)
		}
		return &verifier{h: sha1.New(), want: want, algo: "sha1"}, nil
	}
	return &verifier{h: sha512.New()}, nil
}

func (v *verifier) check() error {
	if v.want == nil {
		return nil
	}
	got := v.h.Sum(nil)
	if string(got) != string(v.want) {
		return fmt.Errorf("%w: %s mismatch", ErrIntegrity, v.algo)
	}
	return nil
}

// extractTarGz unpacks regular files and directories from archivePath into
// destDir, dropping the first path component. Entries that would escape
// destDir are rejected. It returns the number of files written.
func extractTarGz(archivePath, destDir string) (int, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	files := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return files, fmt.Errorf("reading tar entry: %w", err)
		}

		rel := stripFirstComponent(hdr.Name)
		if rel == "" {
			continue
		}
		if !filepath.IsLocal(rel) {
			return files, fmt.Errorf("tar entry %q escapes the destination directory", hdr.Name)
		}
		target := filepath.Join(destDir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return files, err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return files, err
			}
			files++
		}
		// Links and special files are not part of published packages.
	}
	return files, nil
}

func writeEntry(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return out.Close()
}

func stripFirstComponent(name string) string {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")
	_, rest, ok := strings.Cut(name, "/")
	if !ok || rest == "" {
		return ""
	}
	return filepath.FromSlash(rest)
}
