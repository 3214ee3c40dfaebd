package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain passes note text through unchanged except that invalid UTF-8
// sequences become U+FFFD, so downstream chunking and JSON encoding never see
// broken bytes.
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		content = []byte(strings.ToValidUTF8(string(content), "\ufffd"))
	}
	return string(content), nil
}
