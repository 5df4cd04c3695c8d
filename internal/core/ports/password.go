package ports

// PasswordHasher is the one-way, salted password hasher used at signup.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash.
	Compare(hash, password string) error
}
