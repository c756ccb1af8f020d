package ports

// PasswordHasher turns plaintext credentials into opaque hashes and checks
// candidates against them.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify returns domain.ErrInvalidCredentials on mismatch.
	Verify(hash, plaintext string) error
}
