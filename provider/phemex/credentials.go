package phemex

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	headerSignature   = "x-phemex-request-signature"
	headerExpiry      = "x-phemex-request-expiry"
	headerAccessToken = "x-phemex-access-token"

	// The signature expiry window accepted by the exchange.
	signatureTTL = 60 * time.Second
)

// for tests
var timeNow = time.Now

// Credentials attach authentication to an outbound request. The body is
// passed separately because the request body reader is already consumed by
// the transport at signing time.
type Credentials interface {
	Sign(req *http.Request, body []byte) error
}

// PublicCredentials leave the request untouched. They are the default for
// connections that only call public endpoints.
type PublicCredentials struct{}

func (PublicCredentials) Sign(*http.Request, []byte) error { return nil }

// AuthCredentials sign requests for private API access with the
// HMAC-SHA256 scheme expected by the exchange.
type AuthCredentials struct {
	APIKey    string
	SecretKey string
}

func (c AuthCredentials) Sign(req *http.Request, body []byte) error {
	expiry := strconv.FormatInt(timeNow().Unix()+int64(signatureTTL/time.Second), 10)

	signature, err := c.signature(req.URL.Path, req.URL.RawQuery, expiry, body)
	if err != nil {
		return fmt.Errorf("sign request: %w", err)
	}

	req.Header.Set(headerSignature, signature)
	req.Header.Set(headerExpiry, expiry)
	req.Header.Set(headerAccessToken, c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	return nil
}

// signature hex-encodes HMAC-SHA256 over path + query + expiry + body.
// The query string is canonical raw form, without the leading '?'.
func (c AuthCredentials) signature(path, query, expiry string, body []byte) (string, error) {
	key, err := base64.URLEncoding.DecodeString(c.SecretKey)
	if err != nil {
		return "", fmt.Errorf("secret key is not urlsafe base64: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(path))
	mac.Write([]byte(query))
	mac.Write([]byte(expiry))
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil)), nil
}
