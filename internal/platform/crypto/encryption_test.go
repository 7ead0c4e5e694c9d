package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc, err := New(hex.EncodeToString(bytes.Repeat([]byte{7}, 32)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("expected service to be configured")
	}

	sealed, err := svc.Encrypt([]byte("payslip"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, []byte("payslip")) {
		t.Fatal("expected ciphertext to differ from plaintext")
	}
	plain, err := svc.Decrypt(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(plain) != "payslip" {
		t.Fatalf("expected payslip, got %q", plain)
	}
}

func TestPassphraseKeyIsDerived(t *testing.T) {
	a, err := New("correct horse battery staple")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b, err := New("correct horse battery staple")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !a.Configured() || !bytes.Equal(a.key, b.key) {
		t.Fatal("expected deterministic 32 byte key from passphrase")
	}
}

func TestAmountRoundTrip(t *testing.T) {
	svc, err := New("salary-key")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sealed, err := svc.EncryptAmount(10_500_000.5)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := svc.DecryptAmount(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != 10_500_000.5 {
		t.Fatalf("expected 10500000.5, got %v", got)
	}
}

func TestUnconfiguredPassesThrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := svc.Encrypt([]byte("plain"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if string(out) != "plain" {
		t.Fatalf("expected passthrough, got %q", out)
	}
}
