package httpserver

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/nacl/secretbox"
)

// Cart token cookies are "permanent" in the session sense: they should
// survive browser restarts for a long time.
const cookieMaxAge = 10 * 365 * 24 * 60 * 60

var errCookieTampered = errors.New("cookie failed authentication")

// cookieCodec seals cart tokens into tamper-evident cookie values with
// nacl/secretbox. The key is derived from the configured session
// secret.
type cookieCodec struct {
	key [32]byte
}

func newCookieCodec(secret string) *cookieCodec {
	return &cookieCodec{key: sha256.Sum256([]byte(secret))}
}

func (c *cookieCodec) Encrypt(value string) string {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		panic(err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(value), &nonce, &c.key)
	return base64.RawURLEncoding.EncodeToString(sealed)
}

func (c *cookieCodec) Decrypt(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", errCookieTampered
	}
	if len(raw) < 24 {
		return "", errCookieTampered
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	value, ok := secretbox.Open(nil, raw[24:], &nonce, &c.key)
	if !ok {
		return "", errCookieTampered
	}
	return string(value), nil
}

// cookieTokenStore adapts the request/response cookie pair to the
// cartsession.TokenStore interface. Writes within a request shadow the
// incoming cookies so a resolve after a commit sees the fresh value.
type cookieTokenStore struct {
	c       *gin.Context
	codec   *cookieCodec
	written map[string]string
	deleted map[string]bool
}

func newCookieTokenStore(c *gin.Context, codec *cookieCodec) *cookieTokenStore {
	return &cookieTokenStore{
		c:       c,
		codec:   codec,
		written: make(map[string]string),
		deleted: make(map[string]bool),
	}
}

func (s *cookieTokenStore) Get(key string) (string, bool) {
	if v, ok := s.written[key]; ok {
		return v, true
	}
	if s.deleted[key] {
		return "", false
	}
	encoded, err := s.c.Cookie(key)
	if err != nil {
		return "", false
	}
	value, err := s.codec.Decrypt(encoded)
	if err != nil {
		// Tampered or re-keyed cookie: treat as absent.
		return "", false
	}
	return value, true
}

func (s *cookieTokenStore) Set(key, token string) {
	s.written[key] = token
	delete(s.deleted, key)
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, s.codec.Encrypt(token), cookieMaxAge, "/", "", false, true)
}

func (s *cookieTokenStore) Delete(key string) {
	delete(s.written, key)
	s.deleted[key] = true
	s.c.SetCookie(key, "", -1, "/", "", false, true)
}
