package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Token is an opaque ciphertext. String values are held Go-quoted with
// their exact code units, any other value as its compact JSON encoding.
// Tokens are only sorted and compared.
type Token string

func newToken(s string) Token {
	return Token(strconv.Quote(s))
}

func (t *Token) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		s, err := unquoteJSON(data)
		if err != nil {
			return err
		}
		*t = newToken(s)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	// re-encoding sorts object keys
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	*t = Token(b)
	return nil
}

// String returns string tokens unquoted, anything else as JSON.
func (t Token) String() string {
	if strings.HasPrefix(string(t), `"`) {
		if s, err := strconv.Unquote(string(t)); err == nil {
			return s
		}
	}
	return string(t)
}

var errBadString = errors.New("malformed JSON string")

// unquoteJSON decodes a JSON string literal. Unlike encoding/json it keeps
// unpaired surrogate escapes (as WTF-8) and raw invalid UTF-8 bytes, so
// different literals never decode to the same string.
func unquoteJSON(lit []byte) (string, error) {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		return "", errBadString
	}
	s := lit[1 : len(lit)-1]
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b = append(b, s[i])
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", errBadString
		}
		switch c := s[i+1]; c {
		case '"', '\\', '/':
			b = append(b, c)
		case 'b':
			b = append(b, '\b')
		case 'f':
			b = append(b, '\f')
		case 'n':
			b = append(b, '\n')
		case 'r':
			b = append(b, '\r')
		case 't':
			b = append(b, '\t')
		case 'u':
			r, ok := hex4(s[i+2:])
			if !ok {
				return "", errBadString
			}
			i += 6
			if r >= 0xD800 && r < 0xDC00 && i+1 < len(s) && s[i] == '\\' && s[i+1] == 'u' {
				if r2, ok := hex4(s[i+2:]); ok && r2 >= 0xDC00 && r2 <= 0xDFFF {
					b = utf8.AppendRune(b, utf16.DecodeRune(r, r2))
					i += 6
					continue
				}
			}
			b = appendWTF8(b, r)
			continue
		default:
			return "", fmt.Errorf("%w: escape \\%c", errBadString, c)
		}
		i += 2
	}
	return string(b), nil
}

func hex4(s []byte) (rune, bool) {
	if len(s) < 4 {
		return 0, false
	}
	n, err := strconv.ParseUint(string(s[:4]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}

// appendWTF8 is utf8.AppendRune except that surrogates are encoded as
// three bytes instead of U+FFFD.
func appendWTF8(b []byte, r rune) []byte {
	if utf16.IsSurrogate(r) {
		return append(b, byte(0xE0|r>>12), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	}
	return utf8.AppendRune(b, r)
}

// ProofFile is the decryption proof document.
type ProofFile struct {
	Election string
	Proofs   []ProofRecord
}

type ProofRecord struct {
	Ciphertext Token
}

// MixedFile is the mixer output:
// districts -> group -> district -> question -> ciphertexts.
// Only the configured group and question are decoded, other keys may hold
// anything.
type MixedFile struct {
	Districts map[string]json.RawMessage

	name string
}

// wire shapes, pointers and nil slices mark absent keys
type proofFileJSON struct {
	Election string            `json:"election"`
	Proofs   []proofRecordJSON `json:"proofs"`
}

type proofRecordJSON struct {
	Ciphertext *Token `json:"ciphertext"`
}

type mixedFileJSON struct {
	Districts map[string]json.RawMessage `json:"districts"`
}

// MissingKeyError reports a required key absent from a document. Path is
// the dotted JSON path of the key.
type MissingKeyError struct {
	File string
	Path string
}

func (e *MissingKeyError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("missing key %q", e.Path)
	}
	return fmt.Sprintf("%s: missing key %q", e.File, e.Path)
}
