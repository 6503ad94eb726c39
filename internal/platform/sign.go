package platform

import (
	"crypto/md5"
	"encoding/hex"
)

// Sign computes the request signature some partner endpoints require: the
// MD5 hex digest of the concatenated fields, in protocol order. MD5 here is
// a wire-compatibility requirement of the partner API, not a security
// choice.
func Sign(parts ...string) string {
	h := md5.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
