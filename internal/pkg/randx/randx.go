/*
Package randx generates cryptographically secure random identifiers.

It produces fixed-length Base62 object keys for uploaded assets and standard
UUID strings for message identifiers.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the size of the Base62 character set.
	Base62Len = int64(len(Base62Chars))

	// ObjectKeyLength is the length of generated blob-store object keys.
	ObjectKeyLength = 12
)

// base62String returns a random Base62 string of the given length using
// crypto/rand.
func base62String(length int) (string, error) {
	result := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// ObjectKey generates a Base62 key of ObjectKeyLength characters, used to
// name uploaded avatar objects in the blob store.
func ObjectKey() (string, error) {
	return base62String(ObjectKeyLength)
}

// MessageID generates a UUID v4 string identifying a chat message.
func MessageID() string {
	return uuid.New().String()
}
