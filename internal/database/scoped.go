package database

import "context"

type scopedStore struct {
	inner  Store
	prefix string
}

// Scoped returns a view of inner whose keys live under the given browser session.
// Sessions never see each other's cart or last order.
func Scoped(inner Store, sessionID string) Store {
	return &scopedStore{inner: inner, prefix: "session:" + sessionID + ":"}
}

func (s *scopedStore) Get(ctx context.Context, key string) (string, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scopedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scopedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix+key)
}
