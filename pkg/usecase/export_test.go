package usecase

// KeyLock is exported for testing
type KeyLock = keyLock

var NewKeyLock = newKeyLock

// Size is exported for testing
func (k *keyLock) Size() int {
	return k.size()
}
