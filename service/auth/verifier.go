package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/Piyash1/AstroChat-Mobile/tools/errs"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Options controls signing and TTL.
type Options struct {
	Secret []byte
	Alg    string        // HS256/HS384/HS512, default HS256
	TTL    time.Duration // default 2h, used by Generate only
}

func DefaultOptions(secret []byte) Options {
	return Options{Secret: secret, Alg: "HS256", TTL: 2 * time.Hour}
}

// Verifier validates bearer tokens and yields the subject identifier. Any
// failure (malformed, expired, wrong signature, missing sub) comes back as an
// authentication error; the handshake treats them all alike.
type Verifier struct {
	opts Options
}

func NewVerifier(opts Options) *Verifier {
	if opts.Alg == "" {
		opts.Alg = "HS256"
	}
	return &Verifier{opts: opts}
}

func (v *Verifier) VerifyToken(token string) (string, error) {
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		// HMAC family only; reject alg confusion
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return v.opts.Secret, nil
	})
	if err != nil {
		return "", errs.ErrAuthentication.WrapMsg("verify token", "err", err)
	}
	if !parsed.Valid {
		return "", errs.ErrAuthentication.WrapMsg("invalid token")
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errs.ErrAuthentication.WrapMsg("token has no subject")
	}
	return sub, nil
}

// Generate signs a token for the given subject. The gateway itself never
// issues tokens; this backs tests and local tooling.
func Generate(opts Options, subject string) (string, time.Time, error) {
	method, err := signingMethod(opts.Alg)
	if err != nil {
		return "", time.Time{}, err
	}
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Hour
	}
	now := time.Now()
	exp := now.Add(opts.TTL)

	claims := jwtlib.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	tok := jwtlib.NewWithClaims(method, claims)
	signed, err := tok.SignedString(opts.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func signingMethod(alg string) (jwtlib.SigningMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(alg)) {
	case "", "HS256":
		return jwtlib.SigningMethodHS256, nil
	case "HS384":
		return jwtlib.SigningMethodHS384, nil
	case "HS512":
		return jwtlib.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported alg: %s (use HS256/HS384/HS512)", alg)
	}
}
