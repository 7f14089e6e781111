package lsm

import "encoding/binary"

// Block is an immutable, sorted page of key-value entries plus an offset
// index. It is the bottom-of-stack container format: data bytes followed
// by a u16-per-entry offsets array, followed by a trailing u16 entry
// count. A Block never mutates once built; BlockBuilder is the only
// writer.
type Block struct {
	data    []byte
	offsets []uint16
}

// Encode serialises the block to the on-disk layout described in the
// SST format: data | offsets (u16 LE each) | count (u16 LE). The result
// is passed through compressor, which may be NoCompression.
func (b *Block) Encode(compressor Compressor) []byte {
	if compressor == nil {
		compressor = NoCompression
	}

	buf := make([]byte, 0, len(b.data)+len(b.offsets)*2+2)
	buf = append(buf, b.data...)
	for _, off := range b.offsets {
		buf = binary.LittleEndian.AppendUint16(buf, off)
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(b.offsets)))

	return compressor.Compress(buf)
}

// DecodeBlock reverses Encode. It is a package-level function (rather
// than a method) because there is nothing to decode into yet.
func DecodeBlock(raw []byte, compressor Compressor) (*Block, error) {
	if compressor == nil {
		compressor = NoCompression
	}

	buf, err := compressor.Decompress(raw)
	if err != nil {
		return nil, newCorruptionError("DecodeBlock", "failed to decompress block: "+err.Error())
	}
	if len(buf) < 2 {
		return nil, newCorruptionError("DecodeBlock", "block shorter than trailing count field")
	}

	numEntries := int(binary.LittleEndian.Uint16(buf[len(buf)-2:]))
	offsetsEnd := len(buf) - 2
	offsetsStart := offsetsEnd - numEntries*2
	if offsetsStart < 0 {
		return nil, newCorruptionError("DecodeBlock", "offsets region overruns block")
	}

	offsets := make([]uint16, numEntries)
	for i := 0; i < numEntries; i++ {
		offsets[i] = binary.LittleEndian.Uint16(buf[offsetsStart+i*2 : offsetsStart+i*2+2])
	}

	data := make([]byte, offsetsStart)
	copy(data, buf[:offsetsStart])

	return &Block{data: data, offsets: offsets}, nil
}

// NumEntries reports how many key-value pairs the block holds.
func (b *Block) NumEntries() int {
	return len(b.offsets)
}

// entryAt decodes the entry starting at the given byte offset in b.data,
// returning its key and value.
func (b *Block) entryAt(offset uint16) (key, value []byte) {
	pos := int(offset)
	keyLen := int(binary.LittleEndian.Uint16(b.data[pos : pos+2]))
	pos += 2
	key = b.data[pos : pos+keyLen]
	pos += keyLen
	valLen := int(binary.LittleEndian.Uint16(b.data[pos : pos+2]))
	pos += 2
	value = b.data[pos : pos+valLen]
	return key, value
}
