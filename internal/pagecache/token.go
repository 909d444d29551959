package pagecache

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadToken is returned by ParseToken for strings that were not produced by Token.String.
var ErrBadToken = errors.New("malformed continuation token")

// Token marks where the next page of a result set starts.
type Token struct {
	Key   string
	Start int
}

// String returns the opaque form of the token, safe to hand across process
// boundaries and to put in URLs.
func (t Token) String() string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(t.Start) + ":" + t.Key))
}

// ParseToken reverses Token.String.
func ParseToken(s string) (Token, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Token{}, errors.Wrapf(ErrBadToken, "decode %q", s)
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return Token{}, errors.Wrapf(ErrBadToken, "no separator in %q", s)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil || start < 0 {
		return Token{}, errors.Wrapf(ErrBadToken, "bad offset in %q", s)
	}
	return Token{Key: parts[1], Start: start}, nil
}
