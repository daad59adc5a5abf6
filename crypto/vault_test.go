package crypto

import (
	"errors"
	"testing"
)

// cheap costs keep the tests fast
var testKDF = KDFParams{N: 1024, R: 8, P: 1}

const phrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestVault_RoundTrip(t *testing.T) {
	v, err := NewVaultWithParams(phrase, "hunter2", testKDF)
	if err != nil {
		t.Fatal(err)
	}

	data, err := v.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseVault(data)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Version != VaultVersion || parsed.KDF != testKDF {
		t.Errorf("header = %d %+v", parsed.Version, parsed.KDF)
	}

	got, err := parsed.Open("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if got != phrase {
		t.Errorf("Open() = %q", got)
	}
}

func TestVault_WrongPassword(t *testing.T) {
	v, err := NewVaultWithParams(phrase, "hunter2", testKDF)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Open("hunter3"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Open(wrong) = %v, want ErrWrongPassword", err)
	}
}

func TestVault_FreshSaltAndNonce(t *testing.T) {
	a, _ := NewVaultWithParams(phrase, "pw", testKDF)
	b, _ := NewVaultWithParams(phrase, "pw", testKDF)
	if string(a.Salt) == string(b.Salt) || string(a.Data) == string(b.Data) {
		t.Error("two vaults of the same phrase should not match")
	}
}

func TestVault_Rejects(t *testing.T) {
	if _, err := NewVaultWithParams(phrase, "", testKDF); err == nil {
		t.Error("empty password accepted")
	}
	for _, in := range []string{`not json`, `{"version":2}`} {
		if _, err := ParseVault([]byte(in)); err == nil {
			t.Errorf("ParseVault(%s) accepted", in)
		}
	}
}
