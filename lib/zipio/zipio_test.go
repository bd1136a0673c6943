package zipio

import (
	"archive/zip"
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/unicode/norm"

	"exiffix/lib/batch"
	"exiffix/lib/exiftag"
	"exiffix/lib/utils/testhelper"
)

func makeInputZip(t *testing.T, entries []struct {
	name string
	data []byte
}) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "in.zip")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("zip create %q: %v", e.name, err)
		}
		if _, err = w.Write(e.data); err != nil {
			t.Fatalf("zip write %q: %v", e.name, err)
		}
	}
	if err = zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err = f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return p
}

func TestReadArchiveFiltersAndOrders(t *testing.T) {
	nfdName := norm.NFD.String("café.jpg")

	p := makeInputZip(t, []struct {
		name string
		data []byte
	}{
		{"a.jpg", testhelper.JPEG(16, 16, 3, false)},
		{"notes.txt", []byte("skip me")},
		{"sub/b.jpeg", testhelper.JPEG(16, 16, 6, true)},
		{"c.png", testhelper.PNG(16, 16)},
		{nfdName, testhelper.JPEG(16, 16, 1, false)},
	})

	items, err := ReadArchive(p)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}

	want := []string{"a.jpg", "sub/b.jpeg", "c.png", norm.NFC.String("café.jpg")}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i].Name != want[i] {
			t.Fatalf("item %d is %q, want %q", i, items[i].Name, want[i])
		}
	}
}

func TestWriteArchiveRoundTrip(t *testing.T) {
	results := []batch.Result{
		{Item: batch.Item{Name: "a.jpg",
			Data: testhelper.JPEG(16, 16, 0, false)}, Orient: 3},
		{Item: batch.Item{Name: "broken.jpg"}, Orient: 6,
			Err: io.ErrUnexpectedEOF},
		{Item: batch.Item{Name: "c.png",
			Data: testhelper.PNG(16, 16)}, Orient: 1},
	}

	p := filepath.Join(t.TempDir(), "out.zip")
	if err := WriteArchive(p, results, true); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	zr, err := zip.OpenReader(p)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer zr.Close()

	want := []string{"a.jpg", "c.png", ManifestName}
	if len(zr.File) != len(want) {
		t.Fatalf("got %d entries, want %d", len(zr.File), len(want))
	}
	for i := range want {
		if zr.File[i].Name != want[i] {
			t.Fatalf("entry %d is %q, want %q", i, zr.File[i].Name, want[i])
		}
	}

	// manifest: one line per emitted image, hash then name
	rc, err := zr.File[2].Open()
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer rc.Close()

	var lines []string
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("manifest has %d lines, want 2", len(lines))
	}
	for i, name := range []string{"a.jpg", "c.png"} {
		fields := strings.SplitN(lines[i], "  ", 2)
		if len(fields) != 2 || fields[1] != name || fields[0] == "" {
			t.Fatalf("manifest line %d malformed: %q", i, lines[i])
		}
	}
}

func TestWriteArchivePreservesBytes(t *testing.T) {
	in := testhelper.JPEG(16, 16, 0, false)
	results := []batch.Result{
		{Item: batch.Item{Name: "x.jpg", Data: in}, Orient: 1},
	}

	p := filepath.Join(t.TempDir(), "out.zip")
	if err := WriteArchive(p, results, false); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	items, err := ReadArchive(p)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if len(items) != 1 || !bytes.Equal(items[0].Data, in) {
		t.Fatal("bytes did not survive the round trip")
	}
	if got := exiftag.Orient(items[0].Data); got != 1 {
		t.Fatalf("orientation %d after round trip", got)
	}
}
