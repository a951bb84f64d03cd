package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("Secret123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "Secret123" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !Verify("Secret123", hash) {
		t.Fatalf("expected password to verify")
	}
	if Verify("wrong", hash) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, _ := Hash("same")
	h2, _ := Hash("same")
	if h1 == h2 {
		t.Fatalf("expected distinct salted hashes")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	if Verify("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must fail verification")
	}
	if Verify("anything", "") {
		t.Fatalf("empty hash must fail verification")
	}
}
