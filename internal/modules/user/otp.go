package user

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

// otpMin and otpMax bound the passcode space to four digits without a leading
// zero, matching what clients already accept.
const (
	otpMin = 1000
	otpMax = 9999
)

// generateOTP produces a 4-digit passcode and its absolute expiry instant.
// The code is drawn from crypto/rand; guessing resistance matters here since
// the passcode gates account takeover.
func generateOTP(ttl time.Duration) (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", time.Time{}, err
	}
	code := strconv.FormatInt(otpMin+n.Int64(), 10)
	return code, time.Now().UTC().Add(ttl), nil
}
