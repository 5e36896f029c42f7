package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const keyPrefix = "go-blog:"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Keys should be namespaced by entity type so different entities never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// CategoryUUID returns the stable identifier for a category slug.
func CategoryUUID(slug string) uuid.UUID {
	return scoped("category", strings.ToLower(strings.TrimSpace(slug)))
}

// SubjectUUID returns the stable identifier used as the subject of admin tokens.
func SubjectUUID(name string) uuid.UUID {
	return scoped("subject", strings.ToLower(strings.TrimSpace(name)))
}

func scoped(kind, value string) uuid.UUID {
	if value == "" {
		return uuid.Nil
	}
	return UUID(keyPrefix + kind + ":" + value)
}
