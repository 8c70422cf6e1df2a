package document

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// extractText decodes text as UTF-8, honouring a UTF-8 or UTF-16 byte order
// mark. Invalid sequences become U+FFFD.
func extractText(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
