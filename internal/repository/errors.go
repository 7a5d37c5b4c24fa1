package repository

import "errors"

var errSearchUnsupported = errors.New("store does not support search")

// SupportsSearch сообщает, выполняет ли store поиск на своей стороне.
func SupportsSearch(store ItemStore) bool {
	if c, ok := store.(*CachedStore); ok {
		store = c.Unwrap()
	}
	_, ok := store.(ItemSearcher)
	return ok
}
