// Package header builds and parses the self-describing preamble of a sealed blob.
//
// Layout (all lengths big-endian):
//
//	offset 0      version byte, 0x01
//	offset 1..2   fingerprint length (uint16)
//	offset 3..N   fingerprint, UTF-8
//	offset N..N+2 metadata length (uint16)
//	offset N+2..M metadata, CBOR
//	offset M..    ciphertext
package header

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/kochabx/sealstore/core/crypto/fingerprint"
	"github.com/kochabx/sealstore/core/validator"
	"github.com/kochabx/sealstore/errors"
)

const (
	// Version is the only wire format version this package reads or writes
	Version byte = 0x01

	// MaxMetadataSize is the largest encoded metadata a uint16 length can carry
	MaxMetadataSize = 0xFFFF

	// MinSize is version plus the two length fields
	MinSize = 1 + 2 + 2
)

// Header is the parsed preamble of a blob.
type Header struct {
	Version        byte     `json:"version" validate:"eq=1"`
	KeyFingerprint string   `json:"keyFingerprint" validate:"fingerprint"`
	Metadata       Metadata `json:"metadata"`
}

// Validate checks h against the header schema.
func (h *Header) Validate() error {
	return schema.Struct(h)
}

// Encode is Build(h.Metadata, h.KeyFingerprint).
func (h *Header) Encode() ([]byte, error) {
	return Build(&h.Metadata, h.KeyFingerprint)
}

// Build encodes the header for md and fp. The result is the prefix of a blob;
// the caller appends the ciphertext.
func Build(md *Metadata, fp string) ([]byte, error) {
	if err := fingerprint.Validate(fp); err != nil {
		return nil, errors.InvalidArgumentWithMetadata(
			map[string]string{"field": "keyFingerprint", "actual": fp},
			"invalid key fingerprint")
	}

	encoded, err := EncodeMetadata(md)
	if err != nil {
		field, tag := validator.FirstField(err)
		return nil, errors.WrapWithMetadata(err, errors.CodeInvalidArgument,
			map[string]string{"field": field, "expected": tag}, "invalid metadata")
	}
	if len(encoded) > MaxMetadataSize {
		return nil, errors.FormatWithMetadata(map[string]string{
			"field":    "metadataLength",
			"expected": "<= " + strconv.Itoa(MaxMetadataSize),
			"actual":   strconv.Itoa(len(encoded)),
		}, "metadata exceeds size limit")
	}

	out := make([]byte, 0, MinSize+len(fp)+len(encoded))
	out = append(out, Version)
	out = binary.BigEndian.AppendUint16(out, uint16(len(fp)))
	out = append(out, fp...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(encoded)))
	out = append(out, encoded...)
	return out, nil
}

// Parse reads the header at the start of blob and returns it together with
// the offset at which the ciphertext begins. The ciphertext is not copied.
// Every failure is a format error naming the field, expected and actual values.
func Parse(blob []byte) (*Header, int, error) {
	if len(blob) < MinSize {
		return nil, 0, formatError("blob", ">= "+strconv.Itoa(MinSize), strconv.Itoa(len(blob)), "blob too short")
	}

	if blob[0] != Version {
		return nil, 0, formatError("version", strconv.Itoa(int(Version)), strconv.Itoa(int(blob[0])), "unsupported version")
	}
	off := 1

	fpLen := int(binary.BigEndian.Uint16(blob[off:]))
	off += 2
	if remaining := len(blob) - off; fpLen > remaining {
		return nil, 0, formatError("keyFingerprintLength", "<= "+strconv.Itoa(remaining), strconv.Itoa(fpLen), "length exceeds blob size")
	}
	fp := blob[off : off+fpLen]
	off += fpLen

	if remaining := len(blob) - off; remaining < 2 {
		return nil, 0, formatError("metadataLength", ">= 2 bytes", strconv.Itoa(remaining), "blob truncated")
	}
	mdLen := int(binary.BigEndian.Uint16(blob[off:]))
	off += 2
	if remaining := len(blob) - off; mdLen > remaining {
		return nil, 0, formatError("metadataLength", "<= "+strconv.Itoa(remaining), strconv.Itoa(mdLen), "length exceeds blob size")
	}

	if !utf8.Valid(fp) {
		return nil, 0, formatError("keyFingerprint", "utf-8", strconv.Itoa(fpLen)+" bytes", "fingerprint is not valid utf-8")
	}

	md, err := decodeMetadata(blob[off : off+mdLen])
	if err != nil {
		return nil, 0, formatError("metadata", "cbor map", strconv.Itoa(mdLen)+" bytes", "malformed metadata").WithCause(err)
	}
	off += mdLen

	h := &Header{Version: blob[0], KeyFingerprint: string(fp), Metadata: *md}
	if err := h.Validate(); err != nil {
		field, tag, actual := firstViolation(err)
		return nil, 0, formatError(field, tag, actual, "header schema violation").WithCause(err)
	}

	return h, off, nil
}

func firstViolation(err error) (field, tag, actual string) {
	fes := validator.FieldErrors(err)
	if len(fes) == 0 {
		return "", "", ""
	}
	return fes[0].Field(), fes[0].Tag(), fmt.Sprint(fes[0].Value())
}

func formatError(field, expected, actual, msg string) *errors.Error {
	return errors.FormatWithMetadata(map[string]string{
		"field":    field,
		"expected": expected,
		"actual":   actual,
	}, "%s", msg)
}
