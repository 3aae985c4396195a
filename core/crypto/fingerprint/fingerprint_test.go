package fingerprint

import (
	"crypto/rand"
	"strings"
	"testing"
)

func TestComputeGoldenVector(t *testing.T) {
	got := Compute(make([]byte, 32))
	want := "Zmh6rfhivXdsj8GLjp+OIAiXFIVu4jOzkCpZHQ1fKSU="
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestComputeDeterministic(t *testing.T) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}

	a := Compute(key)
	for i := range 128 {
		if b := Compute(key); b != a {
			t.Fatalf("call %d: fingerprint not deterministic: %s != %s", i, a, b)
		}
	}
	if len(a) != MaxLength || !strings.HasSuffix(a, "=") {
		t.Fatalf("unexpected fingerprint shape: %s", a)
	}
	if err := Validate(a); err != nil {
		t.Fatalf("computed fingerprint rejected: %v", err)
	}
}

func TestComputeOtherLengths(t *testing.T) {
	for _, n := range []int{0, 1, 31, 33, 65} {
		key := make([]byte, n)
		if Compute(key) != Compute(key) {
			t.Errorf("length %d: not deterministic", n)
		}
	}
	if Compute(make([]byte, 31)) == Compute(make([]byte, 32)) {
		t.Error("different inputs should not collide")
	}
}

func TestComputeNoCollisions(t *testing.T) {
	seen := make(map[string]struct{}, 128)
	for range 128 {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			t.Fatal(err)
		}
		seen[Compute(key)] = struct{}{}
	}
	if len(seen) != 128 {
		t.Fatalf("expected 128 distinct fingerprints, got %d", len(seen))
	}
}

func TestValidate(t *testing.T) {
	valid := []string{
		"Zmh6rfhivXdsj8GLjp+OIAiXFIVu4jOzkCpZHQ1fKSU=",
		"Zmh6rfhivXdsj8GLjp+OIAiXFIVu4jOzkCpZHQ1fKSU",
		"////////////////////////////////////////////",
	}
	for _, fp := range valid {
		if err := Validate(fp); err != nil {
			t.Errorf("%q should be valid: %v", fp, err)
		}
	}

	invalid := []string{
		"",
		"short",
		"Zmh6rfhivXdsj8GLjp+OIAiXFIVu4jOzkCpZHQ1fKSU==",
		"Zmh6rfhivXdsj8GLjp+OIAiXFIVu4jOzkCpZHQ1fK=U=",
		"Zmh6rfhivXdsj8GLjp-OIAiXFIVu4jOzkCpZHQ1fKSU=",
		"Zmh6rfhivXdsj8GLjp_OIAiXFIVu4jOzkCpZHQ1fKSU=",
		"Zmh6rfhivXdsj8GLjp OIAiXFIVu4jOzkCpZHQ1fKSU=",
		"Zmh6rfhivXdsj8GLjp+OIAiXFIVu4jOzkCpZHQ1fKSé",
	}
	for _, fp := range invalid {
		if IsValid(fp) {
			t.Errorf("%q should be invalid", fp)
		}
	}
}

func BenchmarkCompute(b *testing.B) {
	key := make([]byte, 32)
	b.ReportAllocs()
	for b.Loop() {
		Compute(key)
	}
}
