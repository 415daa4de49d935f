// Package pairing implements the HMAC-challenge-response device pairing
// gate used by the channel-agent bridge's admission control (spec 4.M).
package pairing

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrChallengeNotFound = errors.New("pairing: challenge not found")
	ErrChallengeExpired  = errors.New("pairing: challenge expired")
	ErrChallengeUsed     = errors.New("pairing: challenge already used")
	ErrBadSignature      = errors.New("pairing: response HMAC mismatch")
)

const defaultChallengeTTL = 5 * time.Minute

// Challenge is a single-use, short-lived pairing nonce.
type Challenge struct {
	ChallengeID uuid.UUID
	Nonce       []byte
	ExpiresAt   time.Time
	used        bool
}

// Device is a successfully paired remote device.
type Device struct {
	DeviceID   string
	DeviceName string
	PublicKey  string
	PairedAt   time.Time
	Revoked    bool
}

// VerifyRequest is the response a device sends back for a Challenge.
type VerifyRequest struct {
	ChallengeID  uuid.UUID
	DeviceID     string
	DeviceName   string
	PublicKey    string
	ResponseHMAC string // hex-encoded
}

var nowFunc = time.Now
var randRead = rand.Read

// Manager keyed by a shared secret; owns outstanding challenges and the
// set of paired devices.
type Manager struct {
	mu         sync.Mutex
	secret     []byte
	ttl        time.Duration
	challenges map[uuid.UUID]*Challenge
	devices    map[string]*Device // keyed by device_id
}

// New creates a Manager keyed by secret, with the default challenge TTL.
func New(secret []byte) *Manager {
	return &Manager{
		secret:     secret,
		ttl:        defaultChallengeTTL,
		challenges: make(map[uuid.UUID]*Challenge),
		devices:    make(map[string]*Device),
	}
}

// CreateChallenge mints a fresh, single-use challenge.
func (m *Manager) CreateChallenge() (Challenge, error) {
	nonce := make([]byte, 32)
	if _, err := randRead(nonce); err != nil {
		return Challenge{}, err
	}
	c := &Challenge{
		ChallengeID: uuid.New(),
		Nonce:       nonce,
		ExpiresAt:   nowFunc().Add(m.ttl),
	}
	m.mu.Lock()
	m.challenges[c.ChallengeID] = c
	m.mu.Unlock()
	return *c, nil
}

func (m *Manager) computeHMAC(nonce []byte) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write(nonce)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyResponse recomputes HMAC(secret, nonce) and compares it
// constant-time against req.ResponseHMAC. On success the device is recorded
// as paired and the challenge is consumed.
func (m *Manager) VerifyResponse(req VerifyRequest) error {
	m.mu.Lock()
	c, ok := m.challenges[req.ChallengeID]
	if !ok {
		m.mu.Unlock()
		return ErrChallengeNotFound
	}
	if c.used {
		m.mu.Unlock()
		return ErrChallengeUsed
	}
	if nowFunc().After(c.ExpiresAt) {
		delete(m.challenges, req.ChallengeID)
		m.mu.Unlock()
		return ErrChallengeExpired
	}

	expected := m.computeHMAC(c.Nonce)
	if !hmac.Equal([]byte(expected), []byte(req.ResponseHMAC)) {
		m.mu.Unlock()
		return ErrBadSignature
	}

	c.used = true
	delete(m.challenges, req.ChallengeID)
	m.devices[req.DeviceID] = &Device{
		DeviceID:   req.DeviceID,
		DeviceName: req.DeviceName,
		PublicKey:  req.PublicKey,
		PairedAt:   nowFunc(),
	}
	m.mu.Unlock()
	return nil
}

// IsPaired reports whether senderIDOrDeviceName names a device that is
// currently paired (and not revoked).
func (m *Manager) IsPaired(senderIDOrDeviceName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.devices[senderIDOrDeviceName]; ok {
		return !d.Revoked
	}
	for _, d := range m.devices {
		if d.DeviceName == senderIDOrDeviceName {
			return !d.Revoked
		}
	}
	return false
}

// RevokeDevice marks a paired device as revoked; it remains IsPaired=false
// from that point on but its pairing history is retained.
func (m *Manager) RevokeDevice(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[id]
	if !ok {
		return errors.New("pairing: unknown device " + id)
	}
	d.Revoked = true
	return nil
}
