package extract

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText decodes file bytes as UTF-8, then Latin-1, then Windows-1252.
// Latin-1 maps every byte, so in practice the chain always yields text; the
// base64 marker fallback stays for the day a decoder refuses the input.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		if s, err := cm.NewDecoder().Bytes(data); err == nil {
			return string(s)
		}
	}
	return fmt.Sprintf("Binary file content (base64): %s", base64.StdEncoding.EncodeToString(data))
}
