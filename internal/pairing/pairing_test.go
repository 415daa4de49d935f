package pairing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"
)

func signResponse(secret []byte, nonce []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(nonce)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyResponseSuccess(t *testing.T) {
	secret := []byte("shared-secret")
	m := New(secret)
	c, err := m.CreateChallenge()
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	req := VerifyRequest{
		ChallengeID:  c.ChallengeID,
		DeviceID:     "dev-1",
		DeviceName:   "alice-phone",
		ResponseHMAC: signResponse(secret, c.Nonce),
	}
	if err := m.VerifyResponse(req); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !m.IsPaired("dev-1") {
		t.Fatalf("expected dev-1 to be paired")
	}
	if !m.IsPaired("alice-phone") {
		t.Fatalf("expected lookup by device name to also work")
	}
}

func TestVerifyResponseBadSignature(t *testing.T) {
	m := New([]byte("secret"))
	c, _ := m.CreateChallenge()
	req := VerifyRequest{ChallengeID: c.ChallengeID, DeviceID: "dev-1", ResponseHMAC: "deadbeef"}
	if err := m.VerifyResponse(req); err != ErrBadSignature {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestChallengeSingleUse(t *testing.T) {
	secret := []byte("secret")
	m := New(secret)
	c, _ := m.CreateChallenge()
	req := VerifyRequest{ChallengeID: c.ChallengeID, DeviceID: "dev-1", ResponseHMAC: signResponse(secret, c.Nonce)}
	if err := m.VerifyResponse(req); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if err := m.VerifyResponse(req); err != ErrChallengeNotFound {
		t.Fatalf("expected challenge to be consumed, got %v", err)
	}
}

func TestChallengeExpiry(t *testing.T) {
	secret := []byte("secret")
	m := New(secret)
	m.ttl = time.Millisecond
	c, _ := m.CreateChallenge()
	time.Sleep(5 * time.Millisecond)
	req := VerifyRequest{ChallengeID: c.ChallengeID, DeviceID: "dev-1", ResponseHMAC: signResponse(secret, c.Nonce)}
	if err := m.VerifyResponse(req); err != ErrChallengeExpired {
		t.Fatalf("expected ErrChallengeExpired, got %v", err)
	}
}

// E4 / property 17 — revocation blocks pairing status.
func TestRevokeDevice(t *testing.T) {
	secret := []byte("secret")
	m := New(secret)
	c, _ := m.CreateChallenge()
	req := VerifyRequest{ChallengeID: c.ChallengeID, DeviceID: "dev-1", ResponseHMAC: signResponse(secret, c.Nonce)}
	_ = m.VerifyResponse(req)

	if err := m.RevokeDevice("dev-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if m.IsPaired("dev-1") {
		t.Fatalf("expected dev-1 to no longer be paired after revocation")
	}
}
