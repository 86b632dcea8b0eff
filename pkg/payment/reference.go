package payment

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Reference IDs may embed the origin that started the payment so a callback
// landing on the wrong deployment (a shared gateway redirecting to whichever
// environment registered the return URL) can bounce the user back to the
// right one. Format: base64url(returnURL) + "." + uuid, no padding.

// EncodeReference builds an environment-carrying reference ID. An empty id
// gets a fresh UUID.
func EncodeReference(returnURL, id string) string {
	if id == "" {
		id = uuid.NewString()
	}
	encoded := base64.RawURLEncoding.EncodeToString([]byte(returnURL))
	return encoded + "." + id
}

// DecodeReference splits a reference ID into its embedded return URL and
// UUID. Any malformation, bad base64, an unparseable URL, a host outside the
// allowlist, means ok=false; callers fall through to verification on the
// current origin rather than failing the payment.
func DecodeReference(referenceID string, allowedHosts []string) (returnURL, id string, ok bool) {
	dot := strings.Index(referenceID, ".")
	if dot <= 0 || dot == len(referenceID)-1 {
		return "", "", false
	}

	raw, err := base64.RawURLEncoding.DecodeString(referenceID[:dot])
	if err != nil {
		return "", "", false
	}

	decoded := string(raw)
	if !ReturnURLAllowed(decoded, allowedHosts) {
		return "", "", false
	}
	return decoded, referenceID[dot+1:], true
}

// ExtractUUID returns the UUID part of an encoded reference ID, or the raw
// value unchanged when it carries no encoding. Gateways receive whatever we
// hand them, so lookups must tolerate both forms.
func ExtractUUID(referenceID string) string {
	dot := strings.Index(referenceID, ".")
	if dot < 0 {
		return referenceID
	}
	candidate := referenceID[dot+1:]
	if _, err := uuid.Parse(candidate); err != nil {
		return referenceID
	}
	return candidate
}

// ReturnURLAllowed reports whether rawURL may be used as a payment return
// target. Hosts must match the allowlist exactly, or by suffix for entries
// starting with a dot. HTTPS is required everywhere except local loopback,
// which must be plain HTTP with an explicit port.
func ReturnURLAllowed(rawURL string, allowedHosts []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := u.Hostname()
	if host == "localhost" || host == "127.0.0.1" {
		return u.Scheme == "http" && u.Port() != ""
	}
	if u.Scheme != "https" {
		return false
	}

	for _, allowed := range allowedHosts {
		if allowed == "" {
			continue
		}
		if strings.HasPrefix(allowed, ".") {
			if strings.HasSuffix(host, allowed) {
				return true
			}
			continue
		}
		if host == allowed {
			return true
		}
	}
	return false
}
