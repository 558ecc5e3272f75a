package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

var (
	NanoidSize     = 32
	nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	txidAlphabet   = "0123456789abcdef"
)

func NanoID() string {
	return NanoIDSize(NanoidSize)
}

func NanoIDSize(size int) string {
	if size == 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}

// TransactionID returns the correlation key stamped on every submission,
// of the form req_ followed by 32 lowercase hex characters.
func TransactionID() string {
	return "req_" + gonanoid.MustGenerate(txidAlphabet, 32)
}
