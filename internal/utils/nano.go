package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	// IDSize is used for need and user ids, which end up in urls.
	IDSize = 16

	// SessionIDSize is longer since session ids are bearer secrets.
	SessionIDSize = 32

	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

func NanoID() string {
	return NanoIDSize(IDSize)
}

func SessionID() string {
	return NanoIDSize(SessionIDSize)
}

func NanoIDSize(size int) string {
	if size <= 0 {
		size = IDSize
	}

	return gonanoid.MustGenerate(idAlphabet, size)
}
