package security

import "testing"

func TestResolvePassthrough(t *testing.T) {
	ks := &KeyStore{}
	val, err := ks.Resolve("sk-plain-key")
	if err != nil {
		t.Fatal(err)
	}
	if val != "sk-plain-key" {
		t.Fatalf("plain values must pass through, got %q", val)
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("short"); got != "****" {
		t.Errorf("MaskKey(short) = %q", got)
	}
	if got := MaskKey("sk-abcdef123456"); got != "sk-...3456" {
		t.Errorf("MaskKey = %q", got)
	}
}
