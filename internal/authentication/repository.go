package authentication

import (
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
)

// RevocationStore remembers logged-out token IDs until the tokens would have
// expired anyway.
type RevocationStore interface {
	Revoke(jti string, until time.Time)
	Revoked(jti string) bool
}

type revocationStore struct {
	revoked cache.Cache[string, struct{}]
}

func NewRevocationStore() RevocationStore {
	return &revocationStore{
		revoked: cache.NewCache[string, struct{}]().WithMaxKeys(10000),
	}
}

func (r *revocationStore) Revoke(jti string, until time.Time) {
	ttl := time.Until(until)
	if jti == "" || ttl <= 0 {
		return
	}
	r.revoked.Set(jti, struct{}{}, ttl)
}

func (r *revocationStore) Revoked(jti string) bool {
	_, ok := r.revoked.Get(jti)
	return ok
}
