// Package password wraps the one-way credential hash. Digests are
// self-describing (bcrypt embeds algorithm, cost and salt), so Verify needs
// no side channel.
package password

import "golang.org/x/crypto/bcrypt"

// Hash derives a salted bcrypt digest from a plaintext password.
func Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plain matches the stored digest. Malformed digests
// simply report false.
func Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
