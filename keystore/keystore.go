// Package keystore implements EIP-2335 encrypted BLS12-381 keystore
// decryption: password normalization, KDF dispatch (scrypt or PBKDF2-HMAC),
// checksum verification, and AES-128-CTR decryption of the recovered
// secret. Every function here is pure and allocation-light; none of them
// perform I/O or logging, per the core's synchronous, thread-safe-by-
// construction design.
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/attestant-tools/sign-core/errs"
)

// Decrypt is the keystore orchestrator (component F): normalize the
// password, parse the keystore JSON, derive the decryption key, verify
// the password via the stored checksum, and decrypt the ciphertext.
// The returned secret is the raw BLS12-381 private key.
func Decrypt(jsonText []byte, password string) ([]byte, error) {
	ks, err := Parse(jsonText)
	if err != nil {
		return nil, err
	}

	normalized := NormalizePassword(password)

	dk, err := deriveKey(ks.Crypto.KDF, normalized)
	if err != nil {
		return nil, err
	}

	if len(dk) < 32 {
		return nil, errs.New(errs.KdfParamError, "derived key shorter than 32 bytes")
	}

	if !verifyChecksum(dk, ks.Crypto.Cipher.Message, ks.Crypto.Checksum.Message) {
		return nil, errs.New(errs.PasswordVerificationFailed, "checksum mismatch: wrong password")
	}

	plaintext, err := decryptCipher(ks.Crypto.Cipher, dk)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

// NormalizePassword implements component A: Unicode NFKD decomposition
// followed by removal of the C0, DEL, and C1 control characters. It does
// not alter any other code point.
func NormalizePassword(password string) string {
	decomposed := norm.NFKD.String(password)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if isControlRune(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isControlRune(r rune) bool {
	switch {
	case r >= 0x00 && r <= 0x1F: // C0
		return true
	case r == 0x7F: // DEL
		return true
	case r >= 0x80 && r <= 0x9F: // C1
		return true
	default:
		return false
	}
}

// --- component B: KDF dispatcher ---

// deriveKey runs the keystore's configured KDF over the normalized
// password, returning a derivation key of length params.DKLen.
func deriveKey(kdf KDF, normalizedPassword string) ([]byte, error) {
	switch p := kdf.Params.(type) {
	case ScryptParams:
		if !isPowerOfTwo(p.N) {
			return nil, errs.New(errs.KdfParamError, "scrypt: n must be a power of two")
		}
		dk, err := scrypt.Key([]byte(normalizedPassword), p.Salt, p.N, p.R, p.P, p.DKLen)
		if err != nil {
			return nil, errs.Wrap(errs.KdfParamError, "scrypt key derivation failed", err)
		}
		return dk, nil
	case Pbkdf2Params:
		hashFn, err := prfHash(p.PRF)
		if err != nil {
			return nil, err
		}
		return pbkdf2.Key([]byte(normalizedPassword), p.Salt, p.C, p.DKLen, hashFn), nil
	default:
		return nil, errs.New(errs.UnsupportedKdf, fmt.Sprintf("unsupported kdf function %q", kdf.Function))
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func prfHash(prf string) (func() hash.Hash, error) {
	switch strings.ToLower(prf) {
	case "hmac-sha256":
		return sha256.New, nil
	case "hmac-sha512":
		return sha512.New, nil
	default:
		return nil, errs.New(errs.UnsupportedPrf, fmt.Sprintf("unsupported prf %q", prf))
	}
}

// --- component D: checksum verifier ---

// verifyChecksum checks SHA-256(dk[16:32] || ciphertext) == expected.
func verifyChecksum(dk, ciphertext, expected []byte) bool {
	h := sha256.New()
	h.Write(dk[16:32])
	h.Write(ciphertext)
	sum := h.Sum(nil)
	return subtle.ConstantTimeCompare(sum, expected) == 1
}

// --- component C: AES-128-CTR cipher ---

// decryptCipher runs AES-128-CTR over the cipher's ciphertext using
// dk[0:16] as key and the cipher's configured IV as the initial counter.
func decryptCipher(c Cipher, dk []byte) ([]byte, error) {
	if !strings.EqualFold(c.Function, "aes-128-ctr") {
		return nil, errs.New(errs.UnsupportedCipher, fmt.Sprintf("unsupported cipher function %q", c.Function))
	}
	if len(c.Params.IV) != 16 {
		return nil, errs.New(errs.BadLength, "cipher iv must be 16 bytes")
	}

	block, err := aes.NewCipher(dk[:16])
	if err != nil {
		return nil, errs.Wrap(errs.UnsupportedCipher, "aes key setup failed", err)
	}

	plaintext := make([]byte, len(c.Message))
	stream := cipher.NewCTR(block, c.Params.IV)
	stream.XORKeyStream(plaintext, c.Message)
	return plaintext, nil
}

// --- component E: keystore schema + parser ---

// Keystore is the typed, decoded form of an EIP-2335 version-4 keystore.
type Keystore struct {
	Version     int
	UUID        string
	Path        string
	Pubkey      *string
	Description *string
	Crypto      Crypto
}

// Crypto groups the three cryptographic modules of a keystore.
type Crypto struct {
	KDF      KDF
	Checksum Checksum
	Cipher   Cipher
}

// KDF is the tagged KDF variant: Params holds either ScryptParams or
// Pbkdf2Params depending on Function. This is a closed sum type at the
// JSON boundary, per the two functions EIP-2335 permits.
type KDF struct {
	Function string
	Params   interface{} // ScryptParams or Pbkdf2Params
	Message  string
}

// ScryptParams are the parameters of the "scrypt" KDF variant.
type ScryptParams struct {
	DKLen int
	N     int
	P     int
	R     int
	Salt  []byte
}

// Pbkdf2Params are the parameters of the "pbkdf2" KDF variant.
type Pbkdf2Params struct {
	DKLen int
	C     int
	PRF   string
	Salt  []byte
}

// Checksum is the "sha256" checksum module.
type Checksum struct {
	Function string
	Message  []byte
}

// Cipher is the "aes-128-ctr" cipher module.
type Cipher struct {
	Function string
	Params   CipherParams
	Message  []byte // ciphertext
}

// CipherParams holds the cipher's initialization vector.
type CipherParams struct {
	IV []byte
}

// --- raw JSON wire shapes ---

type rawKeystore struct {
	Version     int       `json:"version"`
	UUID        string    `json:"uuid"`
	Path        string    `json:"path"`
	Pubkey      *string   `json:"pubkey"`
	Description *string   `json:"description"`
	Crypto      rawCrypto `json:"crypto"`
}

type rawCrypto struct {
	KDF      rawKDF      `json:"kdf"`
	Checksum rawChecksum `json:"checksum"`
	Cipher   rawCipher   `json:"cipher"`
}

type rawKDF struct {
	Function string          `json:"function"`
	Params   json.RawMessage `json:"params"`
	Message  string          `json:"message"`
}

type rawScryptParams struct {
	DKLen int    `json:"dklen"`
	N     int    `json:"n"`
	P     int    `json:"p"`
	R     int    `json:"r"`
	Salt  string `json:"salt"`
}

type rawPbkdf2Params struct {
	DKLen int    `json:"dklen"`
	C     int    `json:"c"`
	PRF   string `json:"prf"`
	Salt  string `json:"salt"`
}

type rawChecksum struct {
	Function string `json:"function"`
	Message  string `json:"message"`
}

type rawCipher struct {
	Function string         `json:"function"`
	Params   rawCipherParam `json:"params"`
	Message  string         `json:"message"`
}

type rawCipherParam struct {
	IV string `json:"iv"`
}

// Parse implements component E: JSON decode, version check, hex decode
// of byte fields, and the tagged-variant dispatch of the KDF shape.
func Parse(jsonText []byte) (*Keystore, error) {
	var raw rawKeystore
	if err := json.Unmarshal(jsonText, &raw); err != nil {
		return nil, errs.Wrap(errs.BadJSON, "malformed keystore json", err)
	}

	// Version is checked before the rest of the schema: an empty or
	// truncated document (e.g. "{}") decodes to Version 0 and is rejected
	// here as UnsupportedVersion rather than SchemaError.
	if raw.Version != 4 {
		return nil, errs.New(errs.UnsupportedVersion, fmt.Sprintf("unsupported keystore version %d", raw.Version))
	}
	if raw.UUID == "" || raw.Crypto.KDF.Function == "" {
		return nil, errs.New(errs.SchemaError, "missing required field")
	}

	kdf, err := parseKDF(raw.Crypto.KDF)
	if err != nil {
		return nil, err
	}

	checksumMsg, err := decodeHex("checksum.message", raw.Crypto.Checksum.Message)
	if err != nil {
		return nil, err
	}

	iv, err := decodeHex("cipher.params.iv", raw.Crypto.Cipher.Params.IV)
	if err != nil {
		return nil, err
	}
	cipherMsg, err := decodeHex("cipher.message", raw.Crypto.Cipher.Message)
	if err != nil {
		return nil, err
	}

	return &Keystore{
		Version:     raw.Version,
		UUID:        raw.UUID,
		Path:        raw.Path,
		Pubkey:      raw.Pubkey,
		Description: raw.Description,
		Crypto: Crypto{
			KDF: kdf,
			Checksum: Checksum{
				Function: raw.Crypto.Checksum.Function,
				Message:  checksumMsg,
			},
			Cipher: Cipher{
				Function: raw.Crypto.Cipher.Function,
				Params:   CipherParams{IV: iv},
				Message:  cipherMsg,
			},
		},
	}, nil
}

func parseKDF(raw rawKDF) (KDF, error) {
	switch strings.ToLower(raw.Function) {
	case "scrypt":
		var p rawScryptParams
		if err := json.Unmarshal(raw.Params, &p); err != nil {
			return KDF{}, errs.Wrap(errs.BadJSON, "malformed scrypt params", err)
		}
		salt, err := decodeHex("kdf.params.salt", p.Salt)
		if err != nil {
			return KDF{}, err
		}
		return KDF{
			Function: raw.Function,
			Message:  raw.Message,
			Params: ScryptParams{
				DKLen: p.DKLen,
				N:     p.N,
				P:     p.P,
				R:     p.R,
				Salt:  salt,
			},
		}, nil
	case "pbkdf2":
		var p rawPbkdf2Params
		if err := json.Unmarshal(raw.Params, &p); err != nil {
			return KDF{}, errs.Wrap(errs.BadJSON, "malformed pbkdf2 params", err)
		}
		salt, err := decodeHex("kdf.params.salt", p.Salt)
		if err != nil {
			return KDF{}, err
		}
		return KDF{
			Function: raw.Function,
			Message:  raw.Message,
			Params: Pbkdf2Params{
				DKLen: p.DKLen,
				C:     p.C,
				PRF:   p.PRF,
				Salt:  salt,
			},
		}, nil
	default:
		return KDF{}, errs.New(errs.UnsupportedKdf, fmt.Sprintf("unsupported kdf function %q", raw.Function))
	}
}

// decodeHex decodes an EIP-2335 hex field, tolerating an optional "0x"
// prefix. field names the JSON path for error messages.
func decodeHex(field, s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(errs.BadHex, fmt.Sprintf("malformed hex in %s", field), err)
	}
	return b, nil
}
