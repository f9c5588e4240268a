package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"mixcheck/log"
)

// ReadProofFile reads and validates the decryption proof document.
func ReadProofFile(name string) (*ProofFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pf, err := DecodeProofFile(f)
	if err != nil {
		return nil, inFile(name, err)
	}
	log.Debugw("proof file loaded", "file", name, "election", pf.Election, "proofs", len(pf.Proofs))
	return pf, nil
}

// DecodeProofFile decodes a proof document. Every record must carry a
// ciphertext.
func DecodeProofFile(r io.Reader) (*ProofFile, error) {
	var raw proofFileJSON
	if err := decodeJSON(r, &raw); err != nil {
		return nil, err
	}
	if raw.Proofs == nil {
		return nil, &MissingKeyError{Path: "proofs"}
	}

	pf := &ProofFile{
		Election: raw.Election,
		Proofs:   make([]ProofRecord, len(raw.Proofs)),
	}
	for i, p := range raw.Proofs {
		if p.Ciphertext == nil {
			return nil, &MissingKeyError{Path: fmt.Sprintf("proofs[%d].ciphertext", i)}
		}
		pf.Proofs[i].Ciphertext = *p.Ciphertext
	}
	return pf, nil
}

// Ciphertexts returns the ciphertext of every proof record, in document
// order, duplicates included.
func (pf *ProofFile) Ciphertexts() []Token {
	tokens := make([]Token, 0, len(pf.Proofs))
	for _, p := range pf.Proofs {
		tokens = append(tokens, p.Ciphertext)
	}
	return tokens
}

// ReadMixedFile reads the mixer output document.
func ReadMixedFile(name string) (*MixedFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mf, err := DecodeMixedFile(f)
	if err != nil {
		return nil, inFile(name, err)
	}
	mf.name = name
	log.Debugw("mixer output loaded", "file", name, "groups", len(mf.Districts))
	return mf, nil
}

// DecodeMixedFile decodes a mixer output document. Below districts only
// the top level is decoded here, see Ciphertexts.
func DecodeMixedFile(r io.Reader) (*MixedFile, error) {
	var raw mixedFileJSON
	if err := decodeJSON(r, &raw); err != nil {
		return nil, err
	}
	if raw.Districts == nil {
		return nil, &MissingKeyError{Path: "districts"}
	}
	return &MixedFile{Districts: raw.Districts}, nil
}

// Ciphertexts concatenates the ciphertexts of question in every district of
// group. Districts are visited in sorted id order.
func (mf *MixedFile) Ciphertexts(group, question string) ([]Token, error) {
	path := "districts." + group
	var districts map[string]json.RawMessage
	if err := mf.decodeKey(mf.Districts[group], path, &districts); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(districts))
	for id := range districts {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	tokens := []Token{}
	for _, id := range ids {
		dpath := path + "." + id
		var questions map[string]json.RawMessage
		if err := mf.decodeKey(districts[id], dpath, &questions); err != nil {
			return nil, err
		}
		var list []Token
		if err := mf.decodeKey(questions[question], dpath+"."+question, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			log.Warnw("district without ciphertexts", "district", id, "question", question)
		}
		tokens = append(tokens, list...)
	}
	return tokens, nil
}

// decodeKey decodes the value found at path. An absent or null value is a
// MissingKeyError.
func (mf *MixedFile) decodeKey(raw json.RawMessage, path string, v interface{}) error {
	if isNull(raw) {
		return &MissingKeyError{File: mf.name, Path: path}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%s: unexpected value at %q: %w", displayName(mf.name), path, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func decodeJSON(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("unexpected %s at %q: %w", typeErr.Value, typeErr.Field, err)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// inFile attaches the file name to a decoding error.
func inFile(name string, err error) error {
	var missing *MissingKeyError
	if errors.As(err, &missing) {
		missing.File = name
		return missing
	}
	return fmt.Errorf("%s: %w", name, err)
}

func displayName(name string) string {
	if name == "" {
		return "<input>"
	}
	return name
}
