package header

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/fxamacker/cbor/v2"
	playground "github.com/go-playground/validator/v10"

	"github.com/kochabx/sealstore/core/crypto/fingerprint"
	"github.com/kochabx/sealstore/core/validator"
)

// Metadata describes a sealed blob. It travels in clear text inside the
// header; only fields the caller chooses to disclose belong here.
type Metadata struct {
	// Algorithm is the cipher tag, e.g. box.Algorithm
	Algorithm string `cbor:"algorithm" json:"algorithm" validate:"required,max=255"`
	// Timestamp is the encryption time in Unix milliseconds
	Timestamp int64 `cbor:"timestamp" json:"timestamp" validate:"gt=0"`

	OriginalFilename string `cbor:"originalFilename,omitempty" json:"originalFilename,omitempty" validate:"omitempty,max=4096"`
	ContentType      string `cbor:"contentType,omitempty" json:"contentType,omitempty" validate:"omitempty,max=255"`
	// PlaintextChecksum is the lowercase hex SHA-256 of the plaintext. It is
	// not bound to the ciphertext and only detects accidental mismatch.
	PlaintextChecksum string `cbor:"plaintextChecksum,omitempty" json:"plaintextChecksum,omitempty" validate:"omitempty,sha256hex"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode

	schema = validator.New()

	sha256hex = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(err)
	}

	// 字段名使用线上格式中的名称（json tag），便于诊断
	schema.Engine().RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	if err := schema.RegisterValidation("fingerprint", func(fl playground.FieldLevel) bool {
		return fingerprint.IsValid(fl.Field().String())
	}, "{0} must be a base64 SHA-256 key fingerprint"); err != nil {
		panic(err)
	}
	if err := schema.RegisterValidation("sha256hex", func(fl playground.FieldLevel) bool {
		return sha256hex.MatchString(fl.Field().String())
	}, "{0} must be a lowercase hex SHA-256 digest"); err != nil {
		panic(err)
	}
}

// Validate checks md against the metadata schema.
func (md *Metadata) Validate() error {
	return schema.Struct(md)
}

// EncodeMetadata validates md and encodes it with CBOR core deterministic
// encoding, so equal metadata always yields equal bytes.
func EncodeMetadata(md *Metadata) ([]byte, error) {
	if err := md.Validate(); err != nil {
		return nil, err
	}
	return encMode.Marshal(md)
}

// DecodeMetadata decodes and validates metadata. Unknown fields, duplicate
// keys and trailing bytes are rejected.
func DecodeMetadata(data []byte) (*Metadata, error) {
	md, err := decodeMetadata(data)
	if err != nil {
		return nil, err
	}
	if err := md.Validate(); err != nil {
		return nil, err
	}
	return md, nil
}

func decodeMetadata(data []byte) (*Metadata, error) {
	var md Metadata
	if err := decMode.Unmarshal(data, &md); err != nil {
		return nil, err
	}
	return &md, nil
}
