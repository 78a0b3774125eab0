package store

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/rmehta3/jobdigest/internal/model"
)

// Fingerprint returns the deduplication digest for a posting: sha256 over
// the normalized company and title joined with a fixed delimiter. Two
// postings from the same company with the same title collide on purpose,
// even when they are genuinely different roles.
func Fingerprint(p model.Posting) string {
	company := strings.ToLower(strings.TrimSpace(p.Company))
	title := strings.ToLower(strings.TrimSpace(p.Title))
	sum := sha256.Sum256([]byte(company + "|" + title))
	return hex.EncodeToString(sum[:])
}
