package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// KeyParams identifies one page request.
type KeyParams struct {
	Source    string `json:"source"`
	Workspace string `json:"workspace,omitempty"`
	Sort      string `json:"sort,omitempty"`
	Order     string `json:"order,omitempty"`
	Offset    int    `json:"offset"`
	Limit     int    `json:"limit"`
}

// GenerateKey returns a deterministic key for p. String fields are trimmed
// and lower-cased except the workspace, which is case sensitive.
func GenerateKey(p KeyParams) (string, error) {
	normalized := KeyParams{
		Source:    strings.ToLower(strings.TrimSpace(p.Source)),
		Workspace: strings.TrimSpace(p.Workspace),
		Sort:      strings.TrimSpace(p.Sort),
		Order:     strings.ToLower(strings.TrimSpace(p.Order)),
		Offset:    p.Offset,
		Limit:     p.Limit,
	}
	if normalized.Source == "" {
		return "", ErrInvalidKey
	}

	raw, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
