// resource_catalog.go - Resource manifest parser

package vm

import "encoding/binary"

// manifestRecordSize is the fixed width of one manifest record: kind (u8),
// bank-id (u8), bank-offset (u32 BE), compressed-size (u16 BE),
// uncompressed-size (u16 BE), and 2 packing bytes reserved by the on-disk
// format but unused here.
const manifestRecordSize = 12

// manifestTerminatorKind marks the sentinel record ending the manifest.
const manifestTerminatorKind = 0xFF

// ParseManifest parses the resource manifest into an ordered sequence of
// descriptors, one per id (including empty slots), per spec.md §4.2/§6.
// Fails with ErrInvalidManifest if a record is short, malformed, or any
// record's compressed size exceeds its uncompressed size.
func ParseManifest(data []byte) ([]ResourceDescriptor, error) {
	var descriptors []ResourceDescriptor
	for offset := 0; ; offset += manifestRecordSize {
		if offset+manifestRecordSize > len(data) {
			return nil, ErrInvalidManifest
		}
		record := data[offset : offset+manifestRecordSize]
		kind := record[0]
		if kind == manifestTerminatorKind {
			return descriptors, nil
		}

		d := ResourceDescriptor{
			Kind:             ResourceKind(kind),
			BankId:           record[1],
			Offset:           binary.BigEndian.Uint32(record[2:6]),
			CompressedSize:   binary.BigEndian.Uint16(record[6:8]),
			UncompressedSize: binary.BigEndian.Uint16(record[8:10]),
		}
		if d.CompressedSize > d.UncompressedSize {
			return nil, ErrInvalidManifest
		}
		descriptors = append(descriptors, d)
	}
}
