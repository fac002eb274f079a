package store

import (
	"bytes"
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/btrievedb/btrieve"
)

func TestCodec_RoundTrip(t *testing.T) {

	payload := bytes.Repeat([]byte(`{"position":1,"data":"AAAA"}`), 50)

	for _, codec := range []Codec{CodecNone, CodecSnappy, CodecLZ4, CodecZstd} {
		encoded, err := codec.Encode(payload)
		AssertNil(err)
		decoded, err := codec.Decode(encoded)
		AssertNil(err)
		AssertEqual(decoded, payload)
	}
}

func TestParseCodec(t *testing.T) {

	codec, err := ParseCodec("none")
	AssertNil(err)
	AssertEqual(codec, CodecNone)

	codec, err = ParseCodec("zstd")
	AssertNil(err)
	AssertEqual(codec, CodecZstd)

	_, err = ParseCodec("brotli")
	AssertNotNil(err)
}

func TestRecordCompression(t *testing.T) {

	record := []byte("xxxxxxxxxxxxxxxxxxxxyz      ")

	Alternative("blank truncation", func(a *A) {
		stored := compressRecord(btrieve.RecordCompressionModeBlankTruncation, record)
		AssertEqual(len(stored), 4+22)
		data, err := decompressRecord(btrieve.RecordCompressionModeBlankTruncation, stored)
		AssertNil(err)
		AssertEqual(data, record)
	})

	Alternative("run length", func(a *A) {
		stored := compressRecord(btrieve.RecordCompressionModeRunLengthEncoding, record)
		AssertEqual(stored, []byte{20, 'x', 1, 'y', 1, 'z', 6, ' '})
		data, err := decompressRecord(btrieve.RecordCompressionModeRunLengthEncoding, stored)
		AssertNil(err)
		AssertEqual(data, record)
	})

	Alternative("long runs", func(a *A) {
		long := bytes.Repeat([]byte{7}, 600)
		stored := compressRecord(btrieve.RecordCompressionModeRunLengthEncoding, long)
		AssertEqual(stored, []byte{255, 7, 255, 7, 90, 7})
		data, _ := decompressRecord(btrieve.RecordCompressionModeRunLengthEncoding, stored)
		AssertEqual(data, long)
	})

	Alternative("corrupt", func(a *A) {
		_, err := decompressRecord(btrieve.RecordCompressionModeRunLengthEncoding, []byte{1})
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusUnrecoverableError)
	})
}
