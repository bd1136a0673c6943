package zipio

// zip archive boundary: unpack images for correction, repack results.
// entry order and names survive the round trip; errored entries are
// dropped from the output.

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/xerrors"

	"exiffix/lib/batch"
	"exiffix/lib/utils/hashtools"
)

// ManifestName is the checksum listing appended to output archives.
const ManifestName = "MANIFEST"

func imageExt(ext string) bool {
	switch ext {
	case "jpg", "jpeg", "png":
		return true
	}
	return false
}

// ReadArchive loads image entries from the zip at p, in archive order.
// Filenames are NFC normalized; macOS archivers like emitting NFD.
func ReadArchive(p string) (items []batch.Item, err error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, xerrors.Errorf("zipio: open %q: %w", p, err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		name := norm.NFC.String(zf.Name)
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
		if !imageExt(ext) {
			continue
		}

		rc, e := zf.Open()
		if e != nil {
			return nil, xerrors.Errorf("zipio: open entry %q: %w", name, e)
		}
		data, e := io.ReadAll(rc)
		rc.Close()
		if e != nil {
			return nil, xerrors.Errorf("zipio: read entry %q: %w", name, e)
		}

		items = append(items, batch.Item{Name: name, Data: data})
	}
	return items, nil
}

// WriteArchive writes corrected entries to the zip at p, preserving
// input order, optionally with a trailing checksum manifest. The file
// appears atomically: temp file in the destination dir, then rename.
func WriteArchive(p string, results []batch.Result, manifest bool) (err error) {
	tf, err := os.CreateTemp(filepath.Dir(p), ".exiffix-*.zip")
	if err != nil {
		return xerrors.Errorf("zipio: temp file: %w", err)
	}
	tfn := tf.Name()
	defer func() {
		if err != nil {
			tf.Close()
			os.Remove(tfn)
		}
	}()

	zw := zip.NewWriter(tf)

	var mf bytes.Buffer
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			continue
		}

		w, e := zw.Create(r.Name)
		if e != nil {
			return xerrors.Errorf("zipio: create entry %q: %w", r.Name, e)
		}
		_, e = w.Write(r.Data)
		if e != nil {
			return xerrors.Errorf("zipio: write entry %q: %w", r.Name, e)
		}

		if manifest {
			h, e := hashtools.MakeFileHash(bytes.NewReader(r.Data))
			if e != nil {
				return xerrors.Errorf("zipio: hash %q: %w", r.Name, e)
			}
			mf.WriteString(h)
			mf.WriteString("  ")
			mf.WriteString(r.Name)
			mf.WriteByte('\n')
		}
	}

	if manifest {
		w, e := zw.Create(ManifestName)
		if e != nil {
			return xerrors.Errorf("zipio: create manifest: %w", e)
		}
		_, e = w.Write(mf.Bytes())
		if e != nil {
			return xerrors.Errorf("zipio: write manifest: %w", e)
		}
	}

	err = zw.Close()
	if err != nil {
		return xerrors.Errorf("zipio: finish zip: %w", err)
	}
	err = tf.Close()
	if err != nil {
		return xerrors.Errorf("zipio: close temp: %w", err)
	}
	err = os.Rename(tfn, p)
	if err != nil {
		return xerrors.Errorf("zipio: rename into place: %w", err)
	}
	return nil
}
