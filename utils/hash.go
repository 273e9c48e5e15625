package utils

import (
	"crypto/md5"
	"encoding/hex"
	"io"
)

// HashBytes returns the MD5 hash of the given data.
func HashBytes(data []byte) (string, error) {
	h := md5.New()
	_, err := h.Write(data)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashWriterTo returns the MD5 hash of everything src writes.
func HashWriterTo(src io.WriterTo) (string, error) {
	h := md5.New()
	_, err := src.WriteTo(h)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
