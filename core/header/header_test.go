package header

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/sealstore/errors"
)

const testFingerprint = "Zmh6rfhivXdsj8GLjp+OIAiXFIVu4jOzkCpZHQ1fKSU="

func testMetadata() *Metadata {
	return &Metadata{
		Algorithm:         "x25519-xsalsa20-poly1305",
		Timestamp:         1700000000000,
		OriginalFilename:  "report.pdf",
		ContentType:       "application/pdf",
		PlaintextChecksum: strings.Repeat("ab", 32),
	}
}

// rawHeader lays out a header without any validation
func rawHeader(version byte, fp string, md []byte) []byte {
	out := []byte{version}
	out = binary.BigEndian.AppendUint16(out, uint16(len(fp)))
	out = append(out, fp...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(md)))
	return append(out, md...)
}

func requireFormat(t *testing.T, err error, msg, field string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.IsFormat(err), "expected format error, got %v", err)

	e := errors.FromError(err)
	assert.Equal(t, msg, e.GetMessage())
	if field != "" {
		assert.Equal(t, field, e.GetMetadata()["field"])
	}
}

func TestRoundTrip(t *testing.T) {
	md := testMetadata()
	hdr, err := Build(md, testFingerprint)
	require.NoError(t, err)

	ciphertext := bytes.Repeat([]byte{0xCC}, 80)
	blob := append(bytes.Clone(hdr), ciphertext...)

	h, off, err := Parse(blob)
	require.NoError(t, err)
	assert.Equal(t, Version, h.Version)
	assert.Equal(t, testFingerprint, h.KeyFingerprint)
	assert.Equal(t, *md, h.Metadata)
	assert.Equal(t, len(hdr), off)
	assert.Equal(t, ciphertext, blob[off:])
}

func TestRoundTripMinimalMetadata(t *testing.T) {
	md := &Metadata{Algorithm: "x25519-xsalsa20-poly1305", Timestamp: 1}
	hdr, err := Build(md, testFingerprint)
	require.NoError(t, err)

	h, off, err := Parse(hdr)
	require.NoError(t, err)
	assert.Equal(t, *md, h.Metadata)
	assert.Equal(t, len(hdr), off)
}

func TestBuildLayout(t *testing.T) {
	md := testMetadata()
	hdr, err := Build(md, testFingerprint)
	require.NoError(t, err)

	encoded, err := EncodeMetadata(md)
	require.NoError(t, err)

	assert.Equal(t, byte(0x01), hdr[0])
	assert.Equal(t, uint16(len(testFingerprint)), binary.BigEndian.Uint16(hdr[1:3]))
	assert.Equal(t, testFingerprint, string(hdr[3:3+len(testFingerprint)]))
	n := 3 + len(testFingerprint)
	assert.Equal(t, uint16(len(encoded)), binary.BigEndian.Uint16(hdr[n:n+2]))
	assert.Equal(t, encoded, hdr[n+2:])
}

func TestEncodingIsDeterministic(t *testing.T) {
	a, err := EncodeMetadata(testMetadata())
	require.NoError(t, err)
	b, err := EncodeMetadata(testMetadata())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// 结构体字段与等价的 map 编码结果一致：按键排序
	md := testMetadata()
	viaMap, err := encMode.Marshal(map[string]any{
		"plaintextChecksum": md.PlaintextChecksum,
		"contentType":       md.ContentType,
		"originalFilename":  md.OriginalFilename,
		"timestamp":         md.Timestamp,
		"algorithm":         md.Algorithm,
	})
	require.NoError(t, err)
	assert.Equal(t, a, viaMap)
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	_, err := Build(testMetadata(), "not-a-fingerprint")
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = Build(&Metadata{Timestamp: 1}, testFingerprint)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Equal(t, "algorithm", errors.FromError(err).GetMetadata()["field"])

	_, err = Build(&Metadata{Algorithm: "a", Timestamp: 1, PlaintextChecksum: "ABC"}, testFingerprint)
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = Build(&Metadata{Algorithm: "a", Timestamp: 1, OriginalFilename: strings.Repeat("x", 4097)}, testFingerprint)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestBuildLargestMetadataFits(t *testing.T) {
	md := &Metadata{
		Algorithm:        strings.Repeat("a", 255),
		Timestamp:        1,
		OriginalFilename: strings.Repeat("f", 4096),
		ContentType:      strings.Repeat("c", 255),
	}
	hdr, err := Build(md, testFingerprint)
	require.NoError(t, err)

	h, _, err := Parse(hdr)
	require.NoError(t, err)
	assert.Equal(t, *md, h.Metadata)
}

func TestParseTooShort(t *testing.T) {
	for n := range MinSize {
		_, _, err := Parse(make([]byte, n))
		requireFormat(t, err, "blob too short", "blob")
	}
}

func TestParseVersionGate(t *testing.T) {
	hdr, err := Build(testMetadata(), testFingerprint)
	require.NoError(t, err)

	for _, v := range []byte{0x00, 0x02, 0xFF} {
		blob := bytes.Clone(hdr)
		blob[0] = v
		_, _, err := Parse(blob)
		requireFormat(t, err, "unsupported version", "version")
	}
}

func TestParseFingerprintLengthOutOfRange(t *testing.T) {
	hdr, err := Build(testMetadata(), testFingerprint)
	require.NoError(t, err)

	blob := bytes.Clone(hdr)
	binary.BigEndian.PutUint16(blob[1:3], 0xFFFF)

	h, off, err := Parse(blob)
	assert.Nil(t, h)
	assert.Zero(t, off)
	requireFormat(t, err, "length exceeds blob size", "keyFingerprintLength")
	assert.Equal(t, "65535", errors.FromError(err).GetMetadata()["actual"])
}

func TestParseMetadataLengthOutOfRange(t *testing.T) {
	hdr, err := Build(testMetadata(), testFingerprint)
	require.NoError(t, err)

	blob := bytes.Clone(hdr)
	n := 3 + len(testFingerprint)
	binary.BigEndian.PutUint16(blob[n:n+2], uint16(len(blob)))

	_, _, err = Parse(blob)
	requireFormat(t, err, "length exceeds blob size", "metadataLength")
}

func TestParseTruncated(t *testing.T) {
	// 指纹之后只剩 1 字节，无法读取元数据长度
	blob := []byte{0x01, 0x00, 0x02, 'a', 'b', 0x00}
	_, _, err := Parse(blob)
	requireFormat(t, err, "blob truncated", "metadataLength")
}

func TestParseInvalidUTF8Fingerprint(t *testing.T) {
	md, err := EncodeMetadata(testMetadata())
	require.NoError(t, err)

	_, _, err = Parse(rawHeader(0x01, "\xff\xfe", md))
	requireFormat(t, err, "fingerprint is not valid utf-8", "keyFingerprint")
}

func TestParseMalformedMetadata(t *testing.T) {
	cases := map[string][]byte{
		"garbage":   {0xFF, 0x00, 0x13},
		"not a map": mustMarshal(t, []int{1, 2, 3}),
		"unknown field": mustMarshal(t, map[string]any{
			"algorithm": "x25519-xsalsa20-poly1305",
			"timestamp": 1,
			"owner":     "mallory",
		}),
		// {"algorithm":"a","algorithm":"b"}
		"duplicate key": append(append([]byte{0xA2, 0x69}, "algorithm"...), append(append([]byte{0x61, 'a', 0x69}, "algorithm"...), 0x61, 'b')...),
		"trailing bytes": append(mustMarshal(t, map[string]any{
			"algorithm": "x25519-xsalsa20-poly1305",
			"timestamp": 1,
		}), 0x00),
	}

	for name, md := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Parse(rawHeader(0x01, testFingerprint, md))
			requireFormat(t, err, "malformed metadata", "metadata")
		})
	}
}

func TestParseSchemaViolation(t *testing.T) {
	valid, err := EncodeMetadata(testMetadata())
	require.NoError(t, err)

	_, _, err = Parse(rawHeader(0x01, strings.Repeat("!", 44), valid))
	requireFormat(t, err, "header schema violation", "keyFingerprint")

	noTimestamp := mustMarshal(t, map[string]any{"algorithm": "x25519-xsalsa20-poly1305"})
	_, _, err = Parse(rawHeader(0x01, testFingerprint, noTimestamp))
	requireFormat(t, err, "header schema violation", "timestamp")

	badChecksum := mustMarshal(t, map[string]any{
		"algorithm":         "x25519-xsalsa20-poly1305",
		"timestamp":         1,
		"plaintextChecksum": "XYZ",
	})
	_, _, err = Parse(rawHeader(0x01, testFingerprint, badChecksum))
	requireFormat(t, err, "header schema violation", "plaintextChecksum")
}

func TestParseNeverPanics(t *testing.T) {
	hdr, err := Build(testMetadata(), testFingerprint)
	require.NoError(t, err)

	for n := 0; n <= len(hdr); n++ {
		assert.NotPanics(t, func() { _, _, _ = Parse(hdr[:n]) })
	}
	for i := range hdr {
		blob := bytes.Clone(hdr)
		blob[i] ^= 0xFF
		assert.NotPanics(t, func() { _, _, _ = Parse(blob) })
	}
}

func TestDecodeMetadata(t *testing.T) {
	encoded, err := EncodeMetadata(testMetadata())
	require.NoError(t, err)

	md, err := DecodeMetadata(encoded)
	require.NoError(t, err)
	assert.Equal(t, testMetadata(), md)

	_, err = DecodeMetadata(mustMarshal(t, map[string]any{"algorithm": "a", "timestamp": 0}))
	assert.Error(t, err)
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := cbor.Marshal(v)
	require.NoError(t, err)
	return b
}
