package dataset

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// Fingerprint hashes the whole dataset, columns in insertion order, cells in
// row order, names included. Two builds from the same metadata, row count
// and seed produce the same fingerprint, which makes reproducibility
// checkable from two log lines.
func Fingerprint(d *Dataset) uint64 {
	h := xxh3.New()
	var rowBuf [8]byte
	binary.LittleEndian.PutUint64(rowBuf[:], uint64(d.Rows()))
	_, _ = h.Write(rowBuf[:])

	for _, col := range d.Columns() {
		_, _ = h.WriteString(col.Name)
		_, _ = h.Write([]byte{0})
		for _, v := range col.Values {
			_, _ = h.WriteString(CellString(v))
			_, _ = h.Write([]byte{'\n'})
		}
	}
	return h.Sum64()
}
