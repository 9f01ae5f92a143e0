package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// CacheKey identifies a machine translation. Context and Comment take part
// because Qt lets one source string translate differently per dialog.
type CacheKey struct {
	Context  string `json:"context"`
	Comment  string `json:"comment,omitempty"`
	Source   string `json:"source"`
	SrcLang  string `json:"src_lang"`
	TgtLang  string `json:"tgt_lang"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Digest returns the hex sha256 of the key fields, NUL separated.
func (k CacheKey) Digest() string {
	h := sha256.New()
	for _, f := range []string{k.Context, k.Comment, k.Source, k.SrcLang, k.TgtLang, k.Provider, k.Model} {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type CacheEntry struct {
	CacheKey
	ID          int64     `json:"id"`
	Translation string    `json:"translation"`
	Hits        int       `json:"hits"`
	CreatedAt   time.Time `json:"created_at"`
}
