package travis

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"
)

// ParsePublicKey decodes a Travis repository key. Travis serves PKIX keys
// but has labelled them "RSA PUBLIC KEY" at times, so both encodings are
// accepted regardless of the PEM label.
func ParsePublicKey(pemText string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(pemText)))
	if block == nil {
		return nil, fmt.Errorf("travis key is not PEM encoded")
	}

	if pub, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("travis key is %T, want RSA", pub)
		}
		return rsaPub, nil
	}

	pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing travis key: %w", err)
	}
	return pub, nil
}

// Encrypt encrypts data with RSA PKCS#1 v1.5 against pemText and returns
// the base64 result, the format of Travis "secure" values.
func Encrypt(pemText, data string) (string, error) {
	pub, err := ParsePublicKey(pemText)
	if err != nil {
		return "", err
	}
	out, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(data))
	if err != nil {
		return "", fmt.Errorf("encrypting secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// EncryptSecret fetches owner/repo's key and encrypts data with it.
func (c *Client) EncryptSecret(ctx context.Context, owner, repo, data string) (string, error) {
	key, err := c.RepoKey(ctx, owner, repo)
	if err != nil {
		return "", err
	}
	return Encrypt(key, data)
}
