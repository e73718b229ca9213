package l2block

import (
	"encoding/binary"
	"fmt"
)

const chunkLenSize = 4

// UnverifiedData is the auxiliary data of a block: the ordered chunks of
// every tx included in it. It is published but not proven.
type UnverifiedData struct {
	Chunks [][]byte
}

// JoinUnverifiedData concatenates the chunks of txs, preserving their order.
func JoinUnverifiedData(txs []Tx) UnverifiedData {
	data := UnverifiedData{Chunks: [][]byte{}}
	for _, tx := range txs {
		for _, c := range tx.UnverifiedData {
			data.Chunks = append(data.Chunks, c)
		}
	}
	return data
}

// Bytes serialises the chunks as a sequence of 4 byte big endian length
// prefixes followed by the chunk contents.
func (d UnverifiedData) Bytes() []byte {
	size := 0
	for _, c := range d.Chunks {
		size += chunkLenSize + len(c)
	}
	out := make([]byte, 0, size)
	for _, c := range d.Chunks {
		out = binary.BigEndian.AppendUint32(out, uint32(len(c)))
		out = append(out, c...)
	}
	return out
}

// DecodeUnverifiedData is the inverse of UnverifiedData.Bytes.
func DecodeUnverifiedData(data []byte) (UnverifiedData, error) {
	res := UnverifiedData{Chunks: [][]byte{}}
	for len(data) > 0 {
		if len(data) < chunkLenSize {
			return UnverifiedData{}, fmt.Errorf("truncated chunk length: %d bytes left", len(data))
		}
		l := binary.BigEndian.Uint32(data[:chunkLenSize])
		data = data[chunkLenSize:]
		if uint64(len(data)) < uint64(l) {
			return UnverifiedData{}, fmt.Errorf("truncated chunk: expected %d bytes, got %d", l, len(data))
		}
		res.Chunks = append(res.Chunks, data[:l])
		data = data[l:]
	}
	return res, nil
}
