package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint строит стабильный отпечаток нормализованного текста для
// поиска дубликатов. Регистр и разбиение на пробелы не влияют на результат.
func Fingerprint(text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
