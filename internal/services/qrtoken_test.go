package services

import (
	"regexp"
	"strings"
	"testing"

	"github.com/lespetitsreves/lprds/internal/models"
)

func TestQRRoundTrip(t *testing.T) {
	ids := []string{
		"0b0e8f2e-8f57-4a3e-9a5a-2f8f0c2d7a11",
		"abc",
		"child:with:colons-suffix-is-first-segment", // only the first segment survives
	}
	for _, id := range ids {
		payload := EncodeChildQR(id)
		got, err := DecodeChildQR(payload)
		if err != nil {
			t.Fatalf("decode(encode(%q)): %v", id, err)
		}
		want, _, _ := strings.Cut(id, ":")
		if got != want {
			t.Errorf("round-trip: want %q, got %q", want, got)
		}
	}
}

func TestQRPayloadPrefix(t *testing.T) {
	payload := EncodeChildQR("some-child")
	if !strings.HasPrefix(payload, QRPrefix) {
		t.Errorf("payload %q missing %q prefix", payload, QRPrefix)
	}
}

func TestQRDecodeWithoutPrefix(t *testing.T) {
	payload := strings.TrimPrefix(EncodeChildQR("some-child"), QRPrefix)
	got, err := DecodeChildQR(payload)
	if err != nil {
		t.Fatalf("decode without prefix: %v", err)
	}
	if got != "some-child" {
		t.Errorf("want some-child, got %q", got)
	}
}

func TestQRDecodeGarbage(t *testing.T) {
	for _, bad := range []string{"", "LPRDS:", "not-base64!!!", "LPRDS:%%%%"} {
		if _, err := DecodeChildQR(bad); err == nil {
			t.Errorf("decode(%q): expected error", bad)
		}
	}
}

func TestQRCiphertextVaries(t *testing.T) {
	// The timestamp suffix exists so regenerated badges don't repeat bytes.
	a := EncodeChildQR("same-child")
	b := EncodeChildQR("same-child")
	idA, _ := DecodeChildQR(a)
	idB, _ := DecodeChildQR(b)
	if idA != "same-child" || idB != "same-child" {
		t.Fatalf("decode mismatch: %q / %q", idA, idB)
	}
}

var shortCodeRE = regexp.MustCompile(`^[A-Z0-9]{5}$`)

func TestShortCodeFormat(t *testing.T) {
	gdb := openTestDB(t)
	for i := 0; i < 50; i++ {
		code := GenerateUniqueCode(gdb)
		if !shortCodeRE.MatchString(code) {
			t.Fatalf("code %q does not match [A-Z0-9]{5}", code)
		}
	}
}

// stubCodeRand makes randomShortCode deterministic: each call consumes the
// next byte value, so 0 yields "AAAAA", 1 yields "BBBBB", and so on.
func stubCodeRand(t *testing.T, seq ...byte) {
	t.Helper()
	orig := codeRandRead
	i := 0
	codeRandRead = func(b []byte) (int, error) {
		v := seq[len(seq)-1]
		if i < len(seq) {
			v = seq[i]
			i++
		}
		for j := range b {
			b[j] = v
		}
		return len(b), nil
	}
	t.Cleanup(func() { codeRandRead = orig })
}

func TestShortCodeSkipsExisting(t *testing.T) {
	gdb := openTestDB(t)
	taken := models.Child{FirstName: "X", LastName: "Y", CodeQRID: "AAAAA"}
	if err := gdb.Create(&taken).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	stubCodeRand(t, 0, 1) // "AAAAA" collides, "BBBBB" is free
	code := GenerateUniqueCode(gdb)
	if code != "BBBBB" {
		t.Errorf("want BBBBB after collision, got %q", code)
	}
}

func TestShortCodeExhaustionFallback(t *testing.T) {
	gdb := openTestDB(t)
	taken := models.Child{FirstName: "X", LastName: "Y", CodeQRID: "AAAAA"}
	if err := gdb.Create(&taken).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	stubCodeRand(t, 0) // every attempt collides
	code := GenerateUniqueCode(gdb)
	if code != "AAAAA" {
		t.Errorf("exhaustion should return the last candidate, got %q", code)
	}
}
