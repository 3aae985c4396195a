package validator

import (
	"regexp"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backendConfig 测试用配置结构体
type backendConfig struct {
	Type    string `validate:"required,oneof=memory file bolt"`
	Root    string `validate:"required_if=Type file"`
	Workers int    `validate:"gte=1,lte=64"`
}

// digestRecord 使用自定义规则的结构体
type digestRecord struct {
	Digest string `validate:"omitempty,hex64"`
}

var hex64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestValidatorCreation(t *testing.T) {
	assert.NotNil(t, Validate)
	assert.NotNil(t, New())
	assert.NotNil(t, New(WithTagName("validate"), WithTranslator("en")))
}

func TestBasicValidation(t *testing.T) {
	v := New()
	err := v.Struct(&backendConfig{Type: "file", Root: "./data", Workers: 4})
	assert.NoError(t, err)
}

func TestValidationErrors(t *testing.T) {
	v := New()

	err := v.Struct(&backendConfig{Type: "s3", Workers: 0})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.True(t, HasFieldError(err, "Type"))
	assert.True(t, HasFieldError(err, "Workers"))
	assert.False(t, HasFieldError(err, "Root"))

	field, tag := FirstField(err)
	assert.Equal(t, "Type", field)
	assert.Equal(t, "oneof", tag)
	assert.NotEmpty(t, ErrorsToString(FieldErrors(err), " | "))
}

func TestNilTarget(t *testing.T) {
	assert.Error(t, New().Struct(nil))
}

func TestRegisterValidation(t *testing.T) {
	v := New()
	err := v.RegisterValidation("hex64", func(fl validator.FieldLevel) bool {
		return hex64.MatchString(fl.Field().String())
	}, "{0} must be a lowercase hex sha-256 digest")
	require.NoError(t, err)

	err = v.Struct(&digestRecord{Digest: "XYZ"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Digest must be a lowercase hex sha-256 digest")

	fes := FieldErrors(err)
	require.Len(t, fes, 1)
	assert.Equal(t, "hex64", fes[0].Tag())
	assert.NotEmpty(t, fes[0].Translate("zh"))

	digest := "66687aadf862bd776c8fc18b8e9f8e20089714856ee233b3902a591d0d5f2925"
	assert.NoError(t, v.Struct(&digestRecord{Digest: digest}))
}

func TestVar(t *testing.T) {
	v := New()
	assert.NoError(t, v.Var("abc", "required"))
	assert.Error(t, v.Var("", "required"))
	assert.True(t, IsValidationError(v.Var(70000, "lte=65535")))
}

func TestEnglishTranslation(t *testing.T) {
	v := New()
	err := v.Struct(&backendConfig{Workers: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}
