package keymanager

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/sealstore/core/crypto/box"
	"github.com/kochabx/sealstore/core/crypto/fingerprint"
	"github.com/kochabx/sealstore/errors"
)

func newKeyPair(t *testing.T) *box.KeyPair {
	t.Helper()
	kp, err := box.GenerateKeyPair()
	require.NoError(t, err)
	return kp
}

func TestAddAndGet(t *testing.T) {
	m := New()
	kp := newKeyPair(t)

	fp, err := m.AddKey(kp.Public, kp.Secret)
	require.NoError(t, err)
	assert.Equal(t, fingerprint.Compute(kp.Public[:]), fp)
	assert.True(t, m.HasKey(fp))

	sec, err := m.GetPrivateKey(fp)
	require.NoError(t, err)
	assert.True(t, sec.Equals(kp.Secret))

	// 调用方销毁副本不影响已存储的密钥
	sec.Destroy()
	again, err := m.GetPrivateKey(fp)
	require.NoError(t, err)
	assert.True(t, again.Equals(kp.Secret))

	pub, err := m.GetPublicKey(fp)
	require.NoError(t, err)
	assert.True(t, pub.Equals(kp.Public))
}

func TestAddKeyLeavesCallerKeyIntact(t *testing.T) {
	m := New()
	kp := newKeyPair(t)
	before := kp.Secret.Bytes()

	_, err := m.AddKey(kp.Public, kp.Secret)
	require.NoError(t, err)
	assert.Equal(t, before, kp.Secret.Bytes())
}

func TestAddSecretKey(t *testing.T) {
	m := New()
	kp := newKeyPair(t)

	fp, err := m.AddSecretKey(kp.Secret)
	require.NoError(t, err)
	assert.Equal(t, fingerprint.Compute(kp.Public[:]), fp)
}

func TestKeyNotFound(t *testing.T) {
	m := New()
	fp := "Zmh6rfhivXdsj8GLjp+OIAiXFIVu4jOzkCpZHQ1fKSU="

	assert.False(t, m.HasKey(fp))

	_, err := m.GetPrivateKey(fp)
	require.Error(t, err)
	assert.True(t, errors.IsKeyNotFound(err))
	assert.Equal(t, fp, errors.FromError(err).GetMetadata()["fingerprint"])
	assert.Contains(t, err.Error(), fp)
}

func TestAddKeyRejectsNil(t *testing.T) {
	m := New()
	kp := newKeyPair(t)

	_, err := m.AddKey(nil, kp.Secret)
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = m.AddKey(kp.Public, nil)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Equal(t, 0, m.Len())
}

func TestAddKeyRejectsMismatch(t *testing.T) {
	m := New()
	a, b := newKeyPair(t), newKeyPair(t)

	_, err := m.AddKey(a.Public, b.Secret)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.HasKey(fingerprint.Compute(a.Public[:])))
}

func TestRemoveAndPurge(t *testing.T) {
	m := New()
	a, b := newKeyPair(t), newKeyPair(t)

	fpA, err := m.AddKey(a.Public, a.Secret)
	require.NoError(t, err)
	fpB, err := m.AddKey(b.Public, b.Secret)
	require.NoError(t, err)

	fps := m.Fingerprints()
	require.Len(t, fps, 2)
	assert.True(t, fps[0] < fps[1])
	assert.ElementsMatch(t, []string{fpA, fpB}, fps)

	assert.True(t, m.RemoveKey(fpA))
	assert.False(t, m.RemoveKey(fpA))
	assert.False(t, m.HasKey(fpA))
	assert.Equal(t, 1, m.Len())

	m.Purge()
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.HasKey(fpB))
}

func TestConcurrentAccess(t *testing.T) {
	m := New()
	kp := newKeyPair(t)
	fp, err := m.AddKey(kp.Public, kp.Secret)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				sec, err := m.GetPrivateKey(fp)
				if assert.NoError(t, err) {
					sec.Destroy()
				}
				m.HasKey(fp)
			}
		}()
	}
	wg.Wait()
}
