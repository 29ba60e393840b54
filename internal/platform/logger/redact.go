package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// redactor rewrites key/value pairs before they reach zap. A nil redactor passes through.
type redactor struct {
	salt string
}

func (r *redactor) apply(kv []interface{}) []interface{} {
	if r == nil || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key := strings.ToLower(fmt.Sprint(out[i]))
		switch {
		case strings.Contains(key, "token"), strings.Contains(key, "password"), strings.Contains(key, "secret"):
			out[i+1] = "[REDACTED]"
		case strings.Contains(key, "user_id"):
			out[i+1] = r.pseudonym(out[i+1])
		}
	}
	return out
}

// pseudonym is stable per (salt, id) so one learner's lines still correlate.
func (r *redactor) pseudonym(v interface{}) string {
	raw := strings.TrimSpace(fmt.Sprint(v))
	if v == nil || raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:6])
}
