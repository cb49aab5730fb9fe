package services

import "crm-backend/internal/repositories"

// Number allocation reads MAX(suffix)+1 and is not atomic with the insert,
// so a concurrent create for the same tenant can take the number first.
const documentNumberAttempts = 3

// retryOnNumberCollision runs fn, reallocating when the insert loses the
// number race. Any other error, and exhaustion, are returned as-is.
func retryOnNumberCollision(attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !repositories.IsUniqueViolation(err) {
			return err
		}
	}
	return err
}
