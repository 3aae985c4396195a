package errors

// Domain error codes. Format, authentication, integrity and lookup failures
// are kept apart so callers can alert on storage corruption separately from
// cryptographic failures.
const (
	CodeFormat          = 1001
	CodeAuthentication  = 1002
	CodeIntegrity       = 1003
	CodeKeyNotFound     = 1004
	CodeBlobNotFound    = 1005
	CodeInvalidArgument = 1006
	CodeStorage         = 1007
)

var kinds = map[int]string{
	CodeFormat:          "format",
	CodeAuthentication:  "authentication",
	CodeIntegrity:       "integrity",
	CodeKeyNotFound:     "lookup",
	CodeBlobNotFound:    "not_found",
	CodeInvalidArgument: "invalid_argument",
	CodeStorage:         "storage",
}

// KindOf returns the short name of a domain code, or "" for other codes.
func KindOf(code int) string {
	return kinds[code]
}

// CodeOf returns the code of the first *Error in err's chain, or UnknownCode.
func CodeOf(err error) int {
	var e *Error
	if As(err, &e) {
		return e.Code
	}
	return UnknownCode
}

func hasCode(err error, code int) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// Format reports a malformed header, unsupported version, oversized metadata or truncated blob.
func Format(format string, args ...any) *Error {
	return New(CodeFormat, format, args...)
}

// Authentication reports an AEAD open failure. It never says why.
func Authentication(format string, args ...any) *Error {
	return New(CodeAuthentication, format, args...)
}

// Integrity reports a content-address or plaintext-checksum mismatch.
func Integrity(format string, args ...any) *Error {
	return New(CodeIntegrity, format, args...)
}

// KeyNotFound reports a fingerprint missing from the key manager.
func KeyNotFound(format string, args ...any) *Error {
	return New(CodeKeyNotFound, format, args...)
}

func BlobNotFound(format string, args ...any) *Error {
	return New(CodeBlobNotFound, format, args...)
}

func InvalidArgument(format string, args ...any) *Error {
	return New(CodeInvalidArgument, format, args...)
}

func Storage(format string, args ...any) *Error {
	return New(CodeStorage, format, args...)
}

// Convenience functions with metadata
func FormatWithMetadata(metadata map[string]string, format string, args ...any) *Error {
	return NewWithMetadata(CodeFormat, metadata, format, args...)
}

func IntegrityWithMetadata(metadata map[string]string, format string, args ...any) *Error {
	return NewWithMetadata(CodeIntegrity, metadata, format, args...)
}

func KeyNotFoundWithMetadata(metadata map[string]string, format string, args ...any) *Error {
	return NewWithMetadata(CodeKeyNotFound, metadata, format, args...)
}

func BlobNotFoundWithMetadata(metadata map[string]string, format string, args ...any) *Error {
	return NewWithMetadata(CodeBlobNotFound, metadata, format, args...)
}

func InvalidArgumentWithMetadata(metadata map[string]string, format string, args ...any) *Error {
	return NewWithMetadata(CodeInvalidArgument, metadata, format, args...)
}

// Predicates
func IsFormat(err error) bool         { return hasCode(err, CodeFormat) }
func IsAuthentication(err error) bool { return hasCode(err, CodeAuthentication) }
func IsIntegrity(err error) bool      { return hasCode(err, CodeIntegrity) }
func IsKeyNotFound(err error) bool    { return hasCode(err, CodeKeyNotFound) }
func IsBlobNotFound(err error) bool   { return hasCode(err, CodeBlobNotFound) }
func IsInvalidArgument(err error) bool {
	return hasCode(err, CodeInvalidArgument)
}
func IsStorage(err error) bool { return hasCode(err, CodeStorage) }
