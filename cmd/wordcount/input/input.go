package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// Sentinel ends interactive input.
const Sentinel = "END"

// sniffSize is how much of a file IsTextFile looks at.
const sniffSize = 1024

// maxTokenSize bounds a single whitespace-separated token.
const maxTokenSize = 1 << 20

var ErrNotText = errors.New("file does not look like text")

// ReadTokens reads whitespace-separated tokens from r until EOF or, when
// sentinel is not empty, until a token equal to sentinel.
func ReadTokens(r io.Reader, sentinel string) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTokenSize)
	scanner.Split(bufio.ScanWords)
	tokens := make([]string, 0)
	for scanner.Scan() {
		token := scanner.Text()
		if sentinel != "" && token == sentinel {
			return tokens, nil
		}
		tokens = append(tokens, token)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// ReadFile reads every whitespace-separated token of a text file.
func ReadFile(filename string) ([]string, error) {
	isText, err := IsTextFile(filename)
	if err != nil {
		return nil, err
	}
	if !isText {
		return nil, fmt.Errorf("%s: %w", filename, ErrNotText)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tokens, err := ReadTokens(f, "")
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return tokens, nil
}

// IsTextFile checks if the beginning of the file looks like text.
// It reads up to 1024 bytes and checks for null bytes or invalid UTF-8 sequences.
func IsTextFile(filename string) (bool, error) {
	f, err := os.Open(filename)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buffer := make([]byte, sniffSize)
	n, err := io.ReadFull(f, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	buffer = buffer[:n]

	if n == 0 {
		return true, nil // Empty file is considered text
	}

	// Check for null bytes (common in binary files)
	for _, b := range buffer {
		if b == 0 {
			return false, nil
		}
	}

	// the last rune may be cut by the read limit
	if n == sniffSize {
		for i := n - 1; i >= 0 && i >= n-utf8.UTFMax; i-- {
			if utf8.RuneStart(buffer[i]) {
				if !utf8.FullRune(buffer[i:]) {
					buffer = buffer[:i]
				}
				break
			}
		}
	}
	return utf8.Valid(buffer), nil
}
