package codes

import (
	"context"
	"errors"
	"math/rand"
)

const (
	// Length of a ticket code.
	Length = 6

	// DefaultMaxAttempts bounds the uniqueness retry loop in IssueUnique.
	DefaultMaxAttempts = 10
)

// ErrSpaceExhausted reports that the retry budget ran out without finding an
// unused code. The caller must abort issuance; it must never fall back to a
// duplicate code.
var ErrSpaceExhausted = errors.New("codes: could not find an unused code within the attempt budget")

const (
	alphanumericPool = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digitPool        = "0123456789"
)

// ExistsFunc reports whether a candidate code is already taken within the
// caller's scope. It must only consult committed records, so an aborted
// issuance never blocks reissuance of the same value.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generate returns a 6-character code built from three groups: two
// alphanumeric characters, two forced digits, two alphanumeric characters.
// The digit group in the middle guarantees no run of three alphabetic
// characters, keeping accidental words out of printed tickets.
func Generate() string {
	buff := make([]byte, 0, Length)

	for i := 0; i < 2; i++ {
		buff = append(buff, alphanumericPool[rand.Intn(len(alphanumericPool))])
	}
	for i := 0; i < 2; i++ {
		buff = append(buff, digitPool[rand.Intn(len(digitPool))])
	}
	for i := 0; i < 2; i++ {
		buff = append(buff, alphanumericPool[rand.Intn(len(alphanumericPool))])
	}

	return string(buff)
}

// IssueUnique draws codes until exists reports an unused one, or maxAttempts
// draws have been made. maxAttempts values below 1 fall back to
// DefaultMaxAttempts.
func IssueUnique(ctx context.Context, exists ExistsFunc, maxAttempts int) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := Generate()

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}

		if !taken {
			return candidate, nil
		}
	}

	return "", ErrSpaceExhausted
}
