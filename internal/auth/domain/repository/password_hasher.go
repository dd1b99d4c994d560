package repository

// PasswordHasher defines the interface for credential hashing and verification
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Compare reports whether plaintext matches the stored hash. A mismatch is
	// a false return, not an error; errors are reserved for malformed hashes.
	Compare(plaintext, hash string) bool
}
