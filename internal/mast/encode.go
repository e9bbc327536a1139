package mast

import "strings"

// queryEscaper percent-encodes the characters the MAST search form treats as
// reserved. '+' is left alone so signed declinations pass through.
var queryEscaper = strings.NewReplacer(
	" ", "%20",
	"%", "%25",
	"#", "%23",
	"(", "%28",
	")", "%29",
	"|", "%7c",
)

// Encode returns s with MAST-reserved characters percent-encoded.
func Encode(s string) string {
	return queryEscaper.Replace(s)
}
