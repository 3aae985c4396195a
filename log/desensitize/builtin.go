package desensitize

const mask = "******"

var (
	// SecretKeyRule 屏蔽 secretKey 字段
	SecretKeyRule = MustNewFieldRule("secret_key", "secretKey", mask)

	// SecretRule 屏蔽 secret 字段
	SecretRule = MustNewFieldRule("secret", "secret", mask)

	// PassphraseRule 屏蔽 passphrase 字段
	PassphraseRule = MustNewFieldRule("passphrase", "passphrase", mask)

	// PlaintextRule 屏蔽 plaintext 字段
	PlaintextRule = MustNewFieldRule("plaintext", "plaintext", mask)

	// PEMSecretRule 屏蔽日志中出现的私钥 PEM 块
	PEMSecretRule = MustNewContentRule(
		"pem_secret",
		`-----BEGIN SEALSTORE SECRET KEY-----[\s\S]*?-----END SEALSTORE SECRET KEY-----`,
		"[REDACTED SECRET KEY]",
	)
)

// BuiltinRules 返回所有内置规则
func BuiltinRules() []Rule {
	return []Rule{
		SecretKeyRule,
		SecretRule,
		PassphraseRule,
		PlaintextRule,
		PEMSecretRule,
	}
}
