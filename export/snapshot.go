package export

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/genemod/blobstore"
	"github.com/hupe1980/genemod/internal/hash"
	"github.com/hupe1980/genemod/score"
)

const (
	// snapshotMagic identifies score snapshot artifacts (ASCII: "GMS1").
	snapshotMagic = 0x474d5331
	// snapshotVersion is the current snapshot format version.
	snapshotVersion = 1

	// snapshotHeaderSize is magic (4) + version (2) + flags (2).
	snapshotHeaderSize = 8
	// snapshotFooterSize is the CRC32C of the compressed payload.
	snapshotFooterSize = 4
)

var (
	// ErrInvalidMagic is returned when an artifact is not a score snapshot.
	ErrInvalidMagic = errors.New("invalid snapshot magic")
	// ErrUnsupportedVersion is returned for snapshot versions this build
	// cannot read.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	// ErrChecksumMismatch is returned when the payload checksum does not
	// match the footer, indicating a corrupt or truncated artifact.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
	// ErrTruncatedSnapshot is returned when an artifact is too short to
	// hold a snapshot header and footer.
	ErrTruncatedSnapshot = errors.New("truncated snapshot")
)

// WriteSnapshot writes a score matrix as a binary snapshot artifact.
// The payload is lz4-compressed and protected by a CRC32C footer, so a
// later ReadSnapshot either returns the exact matrix or an error.
func (e *Exporter) WriteSnapshot(ctx context.Context, name string, s *score.Scores) error {
	payload, err := encodeSnapshot(s)
	if err != nil {
		return fmt.Errorf("encode snapshot %q: %w", name, err)
	}

	var compressed bytes.Buffer

	zw := lz4.NewWriter(&compressed)
	if _, err := zw.Write(payload); err != nil {
		return fmt.Errorf("compress snapshot %q: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress snapshot %q: %w", name, err)
	}

	buf := make([]byte, 0, snapshotHeaderSize+compressed.Len()+snapshotFooterSize)
	buf = binary.LittleEndian.AppendUint32(buf, snapshotMagic)
	buf = binary.LittleEndian.AppendUint16(buf, snapshotVersion)
	buf = binary.LittleEndian.AppendUint16(buf, 0) // flags, reserved
	buf = append(buf, compressed.Bytes()...)
	buf = binary.LittleEndian.AppendUint32(buf, hash.CRC32C(compressed.Bytes()))

	w, closer, err := e.create(ctx, name)
	if err != nil {
		return err
	}

	_, err = w.Write(buf)
	if cerr := closer.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write snapshot %q: %w", name, err)
	}
	return nil
}

// ReadSnapshot reads a score matrix snapshot written by WriteSnapshot.
func ReadSnapshot(ctx context.Context, store blobstore.BlobStore, name string) (*score.Scores, error) {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %q: %w", name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %q: %w", name, err)
	}

	if len(raw) < snapshotHeaderSize+snapshotFooterSize {
		return nil, fmt.Errorf("snapshot %q: %w", name, ErrTruncatedSnapshot)
	}

	if magic := binary.LittleEndian.Uint32(raw); magic != snapshotMagic {
		return nil, fmt.Errorf("snapshot %q: %w: got 0x%08x", name, ErrInvalidMagic, magic)
	}
	if version := binary.LittleEndian.Uint16(raw[4:]); version != snapshotVersion {
		return nil, fmt.Errorf("snapshot %q: %w: got %d", name, ErrUnsupportedVersion, version)
	}

	compressed := raw[snapshotHeaderSize : len(raw)-snapshotFooterSize]

	want := binary.LittleEndian.Uint32(raw[len(raw)-snapshotFooterSize:])
	if got := hash.CRC32C(compressed); got != want {
		return nil, fmt.Errorf("snapshot %q: %w: got 0x%08x, want 0x%08x", name, ErrChecksumMismatch, got, want)
	}

	payload, err := io.ReadAll(lz4.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot %q: %w", name, err)
	}

	s, err := decodeSnapshot(payload)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", name, err)
	}
	return s, nil
}

func encodeSnapshot(s *score.Scores) ([]byte, error) {
	var buf bytes.Buffer

	writeUint32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf.Write(b[:])
	}
	writeString := func(v string) error {
		if len(v) > math.MaxUint16 {
			return fmt.Errorf("identifier too long: %d bytes", len(v))
		}
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(len(v)))
		buf.Write(b[:])
		buf.WriteString(v)
		return nil
	}

	writeUint32(uint32(len(s.Labels)))
	writeUint32(uint32(len(s.Cells)))

	for _, label := range s.Labels {
		if err := writeString(label); err != nil {
			return nil, err
		}
	}
	for _, cell := range s.Cells {
		if err := writeString(cell); err != nil {
			return nil, err
		}
	}

	for _, label := range s.Labels {
		writeUint32(uint32(s.ControlPoolSize[label]))
	}

	for i, row := range s.Values {
		if len(row) != len(s.Cells) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(s.Cells))
		}
		for _, v := range row {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
			buf.Write(b[:])
		}
	}

	return buf.Bytes(), nil
}

func decodeSnapshot(payload []byte) (*score.Scores, error) {
	r := bytes.NewReader(payload)

	readUint32 := func() (uint32, error) {
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint32(b[:]), nil
	}
	readString := func() (string, error) {
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", err
		}
		s := make([]byte, binary.LittleEndian.Uint16(b[:]))
		if _, err := io.ReadFull(r, s); err != nil {
			return "", err
		}
		return string(s), nil
	}

	nModules, err := readUint32()
	if err != nil {
		return nil, err
	}
	nCells, err := readUint32()
	if err != nil {
		return nil, err
	}

	s := &score.Scores{
		Labels:          make([]string, nModules),
		Cells:           make([]string, nCells),
		Values:          make([][]float64, nModules),
		ControlPoolSize: make(map[string]int, nModules),
	}

	for i := range s.Labels {
		if s.Labels[i], err = readString(); err != nil {
			return nil, err
		}
	}
	for i := range s.Cells {
		if s.Cells[i], err = readString(); err != nil {
			return nil, err
		}
	}

	for _, label := range s.Labels {
		size, err := readUint32()
		if err != nil {
			return nil, err
		}
		s.ControlPoolSize[label] = int(size)
	}

	for i := range s.Values {
		row := make([]float64, nCells)
		for j := range row {
			var b [8]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, err
			}
			row[j] = math.Float64frombits(binary.LittleEndian.Uint64(b[:]))
		}
		s.Values[i] = row
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes", r.Len())
	}

	return s, nil
}
