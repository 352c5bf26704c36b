package password

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length of every generated temporary password.
const Length = 12

const (
	upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower   = "abcdefghijklmnopqrstuvwxyz"
	digits  = "0123456789"
	symbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// Generate returns a temporary password of exactly Length printable,
// non-whitespace ASCII characters containing at least one upper-case letter,
// one lower-case letter, one digit and one symbol.
func Generate() (string, error) {
	buf := make([]byte, 0, Length)
	for _, class := range []string{upper, lower, digits, symbols} {
		c, err := pick(class)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for len(buf) < Length {
		n, err := randInt(94)
		if err != nil {
			return "", err
		}
		buf = append(buf, byte(33+n))
	}
	// Fisher-Yates; the required classes stay inside the password because
	// nothing is truncated after shuffling.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

func pick(set string) (byte, error) {
	n, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[n], nil
}

func randInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("password: read random: %w", err)
	}
	return int(n.Int64()), nil
}
