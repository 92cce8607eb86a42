// Package wordlist provides the fixed 256-entry word table used to render
// tag bytes as human-legible nicknames. The table is built once at init
// time from two 16-entry syllable sets rather than hand-typed out as 256
// literal strings; the result is still a fixed, deterministic 256-line
// table indexed by a single byte value, which is all the caller needs.
package wordlist

var prefixes = [16]string{
	"ash", "bay", "cor", "dun", "elm", "fen", "gale", "holt",
	"iris", "jade", "kiln", "loch", "moss", "nox", "oak", "pike",
}

var suffixes = [16]string{
	"wood", "ridge", "mere", "ford", "hollow", "crest", "vale", "marsh",
	"field", "rock", "brook", "glen", "moor", "reach", "stone", "wick",
}

// Words is the fixed 256-entry table, indexed by byte value.
var Words [256]string

func init() {
	for i := 0; i < 256; i++ {
		Words[i] = prefixes[i/16] + suffixes[i%16]
	}
}

// Word returns the word for byte b.
func Word(b byte) string {
	return Words[b]
}
