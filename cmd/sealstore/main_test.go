package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"

	"github.com/kochabx/sealstore/core/crypto/fingerprint"
	"github.com/kochabx/sealstore/errors"
	"github.com/kochabx/sealstore/log"
)

type workspace struct {
	dir    string
	config string
	keys   string
}

func newWorkspace(t *testing.T, extra string) *workspace {
	t.Helper()
	t.Setenv(envPassphrase, "")

	dir := t.TempDir()
	w := &workspace{
		dir:    dir,
		config: filepath.Join(dir, "sealstore.yaml"),
		keys:   filepath.Join(dir, "keys"),
	}

	yaml := "log:\n" +
		"  level: error\n" +
		"backend:\n" +
		"  type: file\n" +
		"  file:\n" +
		"    root: " + filepath.Join(dir, "blobs") + "\n" +
		"keys:\n" +
		"  dir: " + w.keys + "\n" +
		extra
	require.NoError(t, os.WriteFile(w.config, []byte(yaml), 0o600))
	return w
}

func (w *workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp()
	a.Writer = &out
	a.ErrWriter = io.Discard
	err := a.Run(append([]string{"sealstore", "--config", w.config}, args...))
	return out.String(), err
}

func (w *workspace) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(w.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRoundTrip(t *testing.T) {
	w := newWorkspace(t, "")

	out, err := w.run(t, "key", "generate", "--name", "alice")
	require.NoError(t, err)
	fp := strings.TrimSpace(out)
	assert.True(t, fingerprint.IsValid(fp), fp)

	out, err = w.run(t, "key", "fingerprint", filepath.Join(w.keys, "alice.pub"))
	require.NoError(t, err)
	assert.Equal(t, fp, strings.TrimSpace(out))

	// the secret key derives the same fingerprint
	out, err = w.run(t, "key", "fingerprint", filepath.Join(w.keys, "alice.key"))
	require.NoError(t, err)
	assert.Equal(t, fp, strings.TrimSpace(out))

	src := w.file(t, "report.txt", "quarterly numbers")
	out, err = w.run(t, "put", "--recipient", filepath.Join(w.keys, "alice.pub"),
		"--content-type", "text/plain", "--checksum", src)
	require.NoError(t, err)
	addr := strings.TrimSpace(out)
	require.Len(t, addr, 64)

	out, err = w.run(t, "get", addr)
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", out)

	dst := filepath.Join(w.dir, "restored.txt")
	_, err = w.run(t, "get", "--key", filepath.Join(w.keys, "alice.key"), "--out", dst, addr)
	require.NoError(t, err)
	restored, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", string(restored))

	out, err = w.run(t, "meta", addr)
	require.NoError(t, err)
	var md map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &md))
	assert.Equal(t, "report.txt", md["originalFilename"])
	assert.Equal(t, "text/plain", md["contentType"])
	assert.Len(t, md["plaintextChecksum"], 64)

	out, err = w.run(t, "verify", addr)
	require.NoError(t, err)
	assert.Equal(t, addr+" OK\n", out)

	out, err = w.run(t, "exists", addr)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, err = w.run(t, "delete", addr)
	require.NoError(t, err)

	out, err = w.run(t, "exists", addr)
	require.Error(t, err)
	assert.Equal(t, "false\n", out)
	assert.Equal(t, exitFailure, exitCode(err))

	_, err = w.run(t, "get", addr)
	require.Error(t, err)
	assert.True(t, errors.IsBlobNotFound(err))
	assert.Equal(t, exitNotFound, exitCode(err))
}

func TestPutMany(t *testing.T) {
	w := newWorkspace(t, "workers: 2\n")
	_, err := w.run(t, "key", "generate", "--name", "bob")
	require.NoError(t, err)

	args := []string{"put", "--recipient", filepath.Join(w.keys, "bob.pub")}
	for i, content := range []string{"one", "two", "three", "four", "five"} {
		args = append(args, w.file(t, "f"+string(rune('a'+i)), content))
	}
	out, err := w.run(t, args...)
	require.NoError(t, err)

	addrs := strings.Fields(out)
	require.Len(t, addrs, 5)

	out, err = w.run(t, append([]string{"verify", "--workers", "3"}, addrs...)...)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, " OK\n"))

	out, err = w.run(t, "get", addrs[2])
	require.NoError(t, err)
	assert.Equal(t, "three", out)
}

func TestPutReportsFailures(t *testing.T) {
	w := newWorkspace(t, "")
	_, err := w.run(t, "key", "generate", "--name", "carol")
	require.NoError(t, err)

	good := w.file(t, "good", "ok")
	out, err := w.run(t, "put", "--recipient", filepath.Join(w.keys, "carol.pub"),
		good, filepath.Join(w.dir, "missing"))
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
	assert.Len(t, strings.Fields(out), 1)
}

func TestReportPutsKeepsStoredAddress(t *testing.T) {
	var out bytes.Buffer
	addr := strings.Repeat("ab", 32)
	results := []putResult{
		{addr: addr, err: errors.Storage("event publish failed")},
		{err: errors.InvalidArgument("input not readable")},
	}

	err := reportPuts(&out, log.NewWriter(io.Discard), []string{"a", "b"}, results)
	require.Error(t, err)
	assert.True(t, errors.IsStorage(err))
	assert.Equal(t, addr+"\n", out.String())
}

func TestVerifyDetectsTampering(t *testing.T) {
	w := newWorkspace(t, "")
	_, err := w.run(t, "key", "generate", "--name", "dave")
	require.NoError(t, err)

	out, err := w.run(t, "put", "--recipient", filepath.Join(w.keys, "dave.pub"), w.file(t, "in", "payload"))
	require.NoError(t, err)
	addr := strings.TrimSpace(out)

	blob := filepath.Join(w.dir, "blobs", addr[:2], addr)
	data, err := os.ReadFile(blob)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(blob, data, 0o600))

	out, err = w.run(t, "verify", addr)
	require.Error(t, err)
	assert.Contains(t, out, addr+" FAILED")
	assert.Equal(t, exitIntegrity, exitCode(err))

	_, err = w.run(t, "get", addr)
	require.Error(t, err)
	assert.True(t, errors.IsIntegrity(err))
}

func TestSealedKeys(t *testing.T) {
	w := newWorkspace(t, "")
	pass := w.file(t, "pass", "correct horse\n")

	_, err := w.run(t, "--passphrase-file", pass, "key", "generate", "--name", "erin")
	require.NoError(t, err)

	out, err := w.run(t, "put", "--recipient", filepath.Join(w.keys, "erin.pub"), w.file(t, "in", "sealed"))
	require.NoError(t, err)
	addr := strings.TrimSpace(out)

	// without the passphrase the key directory cannot be opened
	_, err = w.run(t, "get", addr)
	require.Error(t, err)
	assert.True(t, errors.IsKeyNotFound(err))

	out, err = w.run(t, "--passphrase-file", pass, "get", addr)
	require.NoError(t, err)
	assert.Equal(t, "sealed", out)

	t.Setenv(envPassphrase, "correct horse")
	out, err = w.run(t, "get", addr)
	require.NoError(t, err)
	assert.Equal(t, "sealed", out)
}

func TestMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	textfile := filepath.Join(dir, "sealstore.prom")
	w := newWorkspace(t, "metrics:\n  textfile: "+textfile+"\n")

	_, err := w.run(t, "key", "generate", "--name", "frank")
	require.NoError(t, err)
	_, err = w.run(t, "put", "--recipient", filepath.Join(w.keys, "frank.pub"), w.file(t, "in", "x"))
	require.NoError(t, err)

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `sealstore_operations_total{op="put",result="ok"} 1`)
}

func TestKeyQR(t *testing.T) {
	w := newWorkspace(t, "")
	_, err := w.run(t, "key", "generate", "--name", "grace")
	require.NoError(t, err)
	pub := filepath.Join(w.keys, "grace.pub")

	out, err := w.run(t, "key", "qr", pub)
	require.NoError(t, err)
	assert.Contains(t, out, "\n")

	png := filepath.Join(w.dir, "grace.png")
	_, err = w.run(t, "key", "qr", "--png", png, pub)
	require.NoError(t, err)
	info, err := os.Stat(png)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestUsageErrors(t *testing.T) {
	w := newWorkspace(t, "")

	_, err := w.run(t, "put", w.file(t, "in", "x"))
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = w.run(t, "get")
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = w.run(t, "get", "not-an-address")
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = w.run(t, "events", "watch")
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestMissingConfigUsesDefaults(t *testing.T) {
	t.Setenv(envPassphrase, "")
	dir := t.TempDir()

	cfg, loader, err := loadConfig(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Nil(t, loader)
	assert.Equal(t, backendFile, cfg.Backend.Type)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "./keys", cfg.Keys.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sealstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  type: tape\n"), 0o600))

	_, _, err := loadConfig(path)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitUsage, exitCode(errors.InvalidArgument("x")))
	assert.Equal(t, exitNotFound, exitCode(errors.KeyNotFound("x")))
	assert.Equal(t, exitIntegrity, exitCode(errors.Authentication("x")))
	assert.Equal(t, exitIntegrity, exitCode(errors.Format("x")))
	assert.Equal(t, exitUnavailable, exitCode(errors.Storage("x")))
	assert.Equal(t, exitFailure, exitCode(io.EOF))
	assert.Equal(t, 7, exitCode(cli.NewExitError("", 7)))
}

func TestReadPassphrase(t *testing.T) {
	t.Setenv(envPassphrase, "")
	p, err := readPassphrase("")
	require.NoError(t, err)
	assert.Nil(t, p)

	t.Setenv(envPassphrase, "from-env")
	p, err = readPassphrase("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", string(p))

	path := filepath.Join(t.TempDir(), "pass")
	require.NoError(t, os.WriteFile(path, []byte("from-file\r\n"), 0o600))
	p, err = readPassphrase(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", string(p))

	_, err = readPassphrase(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.IsInvalidArgument(err))
}
