package crypto

import "strings"

const shift = 3

// ShiftEncrypt applies a Caesar shift of 3 to ASCII letters and leaves every
// other rune alone. It is reversible obfuscation for the users file, not
// protection.
func ShiftEncrypt(plain string) string {
	return shiftLetters(plain, shift)
}

func ShiftDecrypt(obfuscated string) string {
	return shiftLetters(obfuscated, 26-shift)
}

func shiftLetters(s string, n rune) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+n)%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+n)%26
		}
		return r
	}, s)
}
