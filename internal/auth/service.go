package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"
)

var (
	ErrMissingKey = errors.New("authorization required")
	ErrInvalidKey = errors.New("invalid api key")
)

// Service validates admin API keys, stored as SHA-256 digests.
type Service struct {
	digests    [][sha256.Size]byte
	headerName string
}

// NewService builds a validator over the configured keys. Blank keys are ignored.
func NewService(keys []string) *Service {
	s := &Service{headerName: "Authorization"}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		s.digests = append(s.digests, sha256.Sum256([]byte(k)))
	}
	return s
}

// Enabled reports whether any admin key is configured.
func (s *Service) Enabled() bool {
	return s != nil && len(s.digests) > 0
}

// Validate returns the index of the matching key. Every configured key is
// compared in constant time.
func (s *Service) Validate(key string) (int, error) {
	if key == "" {
		return -1, ErrMissingKey
	}
	if !s.Enabled() {
		return -1, ErrInvalidKey
	}
	digest := sha256.Sum256([]byte(key))
	match := -1
	for i := range s.digests {
		if subtle.ConstantTimeCompare(digest[:], s.digests[i][:]) == 1 && match < 0 {
			match = i
		}
	}
	if match < 0 {
		return -1, ErrInvalidKey
	}
	return match, nil
}
