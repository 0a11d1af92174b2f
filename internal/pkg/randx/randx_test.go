package randx

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestObjectKeyShape(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		key, err := ObjectKey()
		if err != nil {
			t.Fatalf("ObjectKey failed: %v", err)
		}

		if len(key) != ObjectKeyLength {
			t.Fatalf("len(key) = %d, want %d", len(key), ObjectKeyLength)
		}

		for _, c := range key {
			if !strings.ContainsRune(Base62Chars, c) {
				t.Fatalf("key %q contains non-Base62 character %q", key, c)
			}
		}

		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate key %q", key)
		}
		seen[key] = struct{}{}
	}
}

func TestMessageIDIsUUID(t *testing.T) {
	id := MessageID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("MessageID %q is not a UUID: %v", id, err)
	}
}
