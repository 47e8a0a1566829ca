package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// DeriveAPIKey computes the bearer key for a username as
// hex(sha256("username:secret:YYYYMMDD")). The key is deterministic: it is
// fixed for the lifetime of the account unless the server secret changes.
func DeriveAPIKey(username, secret string, created time.Time) string {
	base := fmt.Sprintf("%s:%s:%s", username, secret, created.Format("20060102"))
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])
}
