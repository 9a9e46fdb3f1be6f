package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/gahan/book-inventory-backend/internal/models"
)

// Activation tokens are single-use without any server-side storage: the
// signature covers the user's activation flag and password hash, so the
// token stops verifying the moment activation flips the flag (or the
// password changes). The base36 prefix carries the issue time for the
// validity window.

// tokenEpoch anchors the timestamp prefix so it stays short.
var tokenEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

func MakeActivationToken(user *models.User, secret string) string {
	ts := int64(time.Now().Sub(tokenEpoch).Seconds())
	return fmt.Sprintf("%s-%s", strconv.FormatInt(ts, 36), activationSignature(user, ts, secret))
}

func CheckActivationToken(user *models.User, token, secret string, timeout time.Duration) bool {
	if user == nil || token == "" {
		return false
	}

	var tsPart, sigPart string
	for i := 0; i < len(token); i++ {
		if token[i] == '-' {
			tsPart, sigPart = token[:i], token[i+1:]
			break
		}
	}
	if tsPart == "" || sigPart == "" {
		return false
	}

	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}

	expected := activationSignature(user, ts, secret)
	if !hmac.Equal([]byte(expected), []byte(sigPart)) {
		return false
	}

	issued := tokenEpoch.Add(time.Duration(ts) * time.Second)
	now := time.Now()
	if issued.After(now) {
		return false
	}
	return now.Sub(issued) <= timeout
}

func activationSignature(user *models.User, ts int64, secret string) string {
	state := fmt.Sprintf("%d:%t:%s:%d", user.ID, user.IsActive, user.Password, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(state))
	return hex.EncodeToString(mac.Sum(nil))[:40]
}
