package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lespetitsreves/lprds/internal/models"
)

// QR payload format, shared with every badge ever printed:
//
//	"LPRDS:" + base64(xor(childID + ":" + base36(unixMillis), key))
//
// The timestamp suffix only varies the ciphertext between regenerations;
// Decode discards it and performs no staleness check. The scheme is
// versionless — changing it silently breaks printed badges, so don't.
const QRPrefix = "LPRDS:"

var ErrBadQRPayload = errors.New("unreadable qr payload")

func qrKey() []byte {
	if k := os.Getenv("QR_SECRET"); k != "" {
		return []byte(k)
	}
	// Default must stay stable: badges printed against it are in circulation.
	return []byte("lprds-badge-key-2023")
}

func xorCycle(b, key []byte) {
	for i := range b {
		b[i] ^= key[i%len(key)]
	}
}

// EncodeChildQR builds the scannable payload for a child's badge.
func EncodeChildQR(childID string) string {
	payload := []byte(childID + ":" + strconv.FormatInt(time.Now().UnixMilli(), 36))
	xorCycle(payload, qrKey())
	return QRPrefix + base64.StdEncoding.EncodeToString(payload)
}

// DecodeChildQR resolves a scanned payload back to a child ID. The prefix is
// optional so raw scanner output and stored payloads both work.
func DecodeChildQR(payload string) (string, error) {
	s := strings.TrimPrefix(strings.TrimSpace(payload), QRPrefix)
	if s == "" {
		return "", ErrBadQRPayload
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", ErrBadQRPayload
	}
	xorCycle(raw, qrKey())
	id, _, found := strings.Cut(string(raw), ":")
	if !found || id == "" {
		return "", ErrBadQRPayload
	}
	return id, nil
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Seam for tests that need a deterministic code sequence.
var codeRandRead = rand.Read

func randomShortCode() string {
	b := make([]byte, 5)
	if _, err := codeRandRead(b); err != nil {
		return ""
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}

// GenerateUniqueCode creates the human-facing short code printed under the QR
// image. It retries up to 10 times against existing children; if every attempt
// collides it returns the last candidate anyway rather than nothing.
func GenerateUniqueCode(gdb *gorm.DB) string {
	var code string
	for i := 0; i < 10; i++ {
		code = randomShortCode()
		if code == "" {
			continue
		}
		var exists int64
		if err := gdb.Model(&models.Child{}).Where("code_qr_id = ?", code).Count(&exists).Error; err != nil {
			continue
		}
		if exists == 0 {
			return code
		}
	}
	return code
}
