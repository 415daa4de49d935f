package file

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/nextlevelbuilder/goclaw/internal/store"
)

// FilePairingStore is a JSON-file-backed store.PairingStore for standalone
// mode. One Pairing record per (channel, sender); approval happens out of
// band (an operator runs `goclaw pairing approve <code>`, which flips
// Approved and persists).
type FilePairingStore struct {
	mu   sync.Mutex
	path string
	data map[string]*store.Pairing // key: channelName + ":" + senderID
}

// NewFilePairingStore loads pairings from path if it exists, or starts
// empty. path == "" disables persistence (in-memory only).
func NewFilePairingStore(path string) (*FilePairingStore, error) {
	s := &FilePairingStore{path: path, data: make(map[string]*store.Pairing)}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var records []*store.Pairing
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	for _, r := range records {
		s.data[pairingKeyOf(r)] = r
	}
	return s, nil
}

func pairingKeyOf(p *store.Pairing) string {
	return p.ChannelName + ":" + p.SenderID
}

// IsPaired reports whether senderID on channelName has an approved pairing.
func (s *FilePairingStore) IsPaired(senderID, channelName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data[channelName+":"+senderID]
	return ok && p.Approved
}

// RequestPairing creates (or re-returns) a pending pairing code for
// senderID on channelName, persisting the updated record.
func (s *FilePairingStore) RequestPairing(senderID, channelName, chatID, agentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := channelName + ":" + senderID
	if p, ok := s.data[key]; ok && !p.Approved {
		return p.Code, nil
	}

	code, err := generatePairingCode()
	if err != nil {
		return "", err
	}
	s.data[key] = &store.Pairing{
		SenderID:    senderID,
		ChannelName: channelName,
		ChatID:      chatID,
		AgentID:     agentID,
		Code:        code,
	}
	if err := s.save(); err != nil {
		return "", err
	}
	return code, nil
}

// Approve marks the pairing identified by code as approved. Used by the
// operator-facing `goclaw pairing approve` flow.
func (s *FilePairingStore) Approve(code string) (*store.Pairing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.data {
		if p.Code == code {
			p.Approved = true
			return p, s.save()
		}
	}
	return nil, os.ErrNotExist
}

// Revoke removes any pairing for senderID on channelName.
func (s *FilePairingStore) Revoke(senderID, channelName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, channelName+":"+senderID)
	return s.save()
}

// save must be called with s.mu held.
func (s *FilePairingStore) save() error {
	if s.path == "" {
		return nil
	}
	records := make([]*store.Pairing, 0, len(s.data))
	for _, p := range s.data {
		records = append(records, p)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "pairing-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, s.path)
}

func generatePairingCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
