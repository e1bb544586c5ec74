// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package protocol

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// Tag is an AES-GCM authentication tag.
type Tag [TagSize]byte

// CipherContext holds the process-local, session-lifetime AES-256-GCM
// key and IV derived from a pre-shared key. It carries no per-message
// state: Encrypt and Decrypt each construct a fresh GCM instance from
// the immutable key and IV, so a single CipherContext can be shared
// across concurrent encrypt/decrypt calls (though the channel that owns
// it does not do so, per the single-threaded design).
type CipherContext struct {
	key [KeySize]byte
	iv  [IVSize]byte
}

// NewCipherContext derives a key and IV from psk using a PBKDF-style
// derivation keyed by SHA-256 with no salt and NROUNDS iterations,
// mirroring the OpenSSL EVP_BytesToKey-driven construction of the
// original C++ implementation. A construction that does not yield
// exactly KeySize+IVSize bytes of material is a fatal, unrecoverable
// error.
func NewCipherContext(psk []byte) (*CipherContext, error) {
	material := pbkdf2.Key(psk, nil, kdfRounds, KeySize+IVSize, sha256.New)
	if len(material) != KeySize+IVSize {
		return nil, fmt.Errorf("%w: derived %d bytes, need %d", ErrKeyDerivation, len(material), KeySize+IVSize)
	}

	ctx := &CipherContext{}
	copy(ctx.key[:], material[:KeySize])
	copy(ctx.iv[:], material[KeySize:])
	return ctx, nil
}

func (c *CipherContext) newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, IVSize)
}

// Encrypt seals plaintext with AES-256-GCM under the context's fixed
// key and IV, writing ciphertext into out (which must be at least
// len(plaintext) bytes) and returning the authentication tag alongside
// the number of ciphertext bytes written.
//
// The IV is reused across every call from the same context: this is a
// documented limitation inherited from the pre-shared-key construction
// (see CipherContext), not a bug. Rekeying requires a new
// CipherContext.
func (c *CipherContext) Encrypt(out []byte, plaintext []byte) (n int, tag Tag, err error) {
	gcm, err := c.newGCM()
	if err != nil {
		return 0, Tag{}, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	if len(out) < len(plaintext) {
		return 0, Tag{}, fmt.Errorf("%w: %v", ErrEncryptionFailed, ErrBufferTooSmall)
	}

	sealed := gcm.Seal(nil, c.iv[:], plaintext, nil)
	ciphertextLen := len(sealed) - TagSize
	copy(out, sealed[:ciphertextLen])
	copy(tag[:], sealed[ciphertextLen:])
	return ciphertextLen, tag, nil
}

// Decrypt opens ciphertext, verifying it against tag, writing plaintext
// into out (which must be at least len(ciphertext) bytes) and returning
// the number of plaintext bytes written. Any failure — bad tag,
// truncated or corrupted ciphertext, cipher init failure — is reported
// as ErrDecryptionFailed; the caller must drop the frame.
func (c *CipherContext) Decrypt(out []byte, ciphertext []byte, tag Tag) (int, error) {
	gcm, err := c.newGCM()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(out) < len(ciphertext) {
		return 0, fmt.Errorf("%w: %v", ErrDecryptionFailed, ErrBufferTooSmall)
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag[:]...)

	opened, err := gcm.Open(out[:0], c.iv[:], sealed, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return len(opened), nil
}

// MaxCiphertextOverhead is the number of bytes an encrypted payload
// adds over the plaintext it carries: a 16-byte tag with no additional
// block padding, since GCM is a stream cipher mode.
const MaxCiphertextOverhead = TagSize

// DeriveMessageNonce is the opt-in, non-interoperable nonce-per-message
// extension mentioned as an alternative to the fixed-IV construction:
// it expands the context's key material with HKDF, keyed by counter, to
// produce a fresh per-message nonce. It is never used by the default
// wire profile; a caller opting into it must apply it symmetrically on
// both ends of the channel and accept that the resulting stream is not
// interoperable with peers using the fixed-IV construction.
func (c *CipherContext) DeriveMessageNonce(counter uint64) ([]byte, error) {
	info := make([]byte, 8)
	binary.BigEndian.PutUint64(info, counter)

	reader := hkdf.New(sha256.New, c.key[:], c.iv[:], info)
	nonce := make([]byte, IVSize)
	if _, err := io.ReadFull(reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce derivation: %v", ErrInternal, err)
	}
	return nonce, nil
}
