package codes

import (
	"context"
	"errors"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Run("codes are always six characters from the expected pools", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			code := Generate()
			require.Len(t, code, Length)

			for _, r := range code {
				assert.True(t, unicode.IsUpper(r) || unicode.IsDigit(r), "unexpected character %q in %q", r, code)
			}

			assert.True(t, unicode.IsDigit(rune(code[2])), "third character of %q must be a digit", code)
			assert.True(t, unicode.IsDigit(rune(code[3])), "fourth character of %q must be a digit", code)
		}
	})

	t.Run("no three consecutive alphabetic characters", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			code := Generate()

			for j := 0; j+3 <= len(code); j++ {
				window := code[j : j+3]
				allLetters := true
				for _, r := range window {
					if !unicode.IsLetter(r) {
						allLetters = false
						break
					}
				}
				assert.False(t, allLetters, "code %q contains alphabetic run %q", code, window)
			}
		}
	})
}

func TestIssueUnique(t *testing.T) {
	ctx := context.Background()

	t.Run("returns first unused candidate", func(t *testing.T) {
		calls := 0
		code, err := IssueUnique(ctx, func(ctx context.Context, code string) (bool, error) {
			calls++
			return calls < 3, nil
		}, DefaultMaxAttempts)

		require.NoError(t, err)
		assert.Len(t, code, Length)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts exactly maxAttempts when every candidate is taken", func(t *testing.T) {
		calls := 0
		_, err := IssueUnique(ctx, func(ctx context.Context, code string) (bool, error) {
			calls++
			return true, nil
		}, DefaultMaxAttempts)

		require.ErrorIs(t, err, ErrSpaceExhausted)
		assert.Equal(t, DefaultMaxAttempts, calls)
	})

	t.Run("propagates predicate errors", func(t *testing.T) {
		boom := errors.New("db is down")
		_, err := IssueUnique(ctx, func(ctx context.Context, code string) (bool, error) {
			return false, boom
		}, DefaultMaxAttempts)

		require.ErrorIs(t, err, boom)
	})

	t.Run("non-positive budget falls back to the default", func(t *testing.T) {
		calls := 0
		_, err := IssueUnique(ctx, func(ctx context.Context, code string) (bool, error) {
			calls++
			return true, nil
		}, 0)

		require.ErrorIs(t, err, ErrSpaceExhausted)
		assert.Equal(t, DefaultMaxAttempts, calls)
	})
}
