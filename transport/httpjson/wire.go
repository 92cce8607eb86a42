// Wire types for the HTTP/JSON reference transport. Marshaling is
// hand-rolled against mailru/easyjson's jwriter and jlexer packages in the
// shape `easyjson -all` would generate, since the toolchain that drives
// that generator is never invoked in this build; nested payloads too
// irregular to hand-roll cleanly (PublicId's DER key bytes) fall back to a
// hex string field, which keeps every type a flat, easyjson-friendly
// scalar record.
package httpjson

import (
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

// greetRequest is the body of a peer greet call.
type greetRequest struct {
	IdDER   string `json:"id_der_hex"`
	Addr    string `json:"addr"`
}

func (v greetRequest) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	w.RawString(`"id_der_hex":`)
	w.String(v.IdDER)
	w.RawString(`,"addr":`)
	w.String(v.Addr)
	w.RawByte('}')
}

func (v *greetRequest) UnmarshalEasyJSON(l *jlexer.Lexer) {
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "id_der_hex":
			v.IdDER = l.String()
		case "addr":
			v.Addr = l.String()
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}

// greetResponse is the body of a peer greet response.
type greetResponse struct {
	Accepted bool   `json:"accepted"`
	SelfDER  string `json:"self_id_der_hex,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func (v greetResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	w.RawString(`"accepted":`)
	w.Bool(v.Accepted)
	w.RawString(`,"self_id_der_hex":`)
	w.String(v.SelfDER)
	w.RawString(`,"redirect":`)
	w.String(v.Redirect)
	w.RawByte('}')
}

func (v *greetResponse) UnmarshalEasyJSON(l *jlexer.Lexer) {
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "accepted":
			v.Accepted = l.Bool()
		case "self_id_der_hex":
			v.SelfDER = l.String()
		case "redirect":
			v.Redirect = l.String()
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}

// discoverRequest is the body of a peer discover call.
type discoverRequest struct {
	Target   string `json:"target_hex"`
	MaxLevel int    `json:"max_level"`
}

func (v discoverRequest) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	w.RawString(`"target_hex":`)
	w.String(v.Target)
	w.RawString(`,"max_level":`)
	w.Int(v.MaxLevel)
	w.RawByte('}')
}

func (v *discoverRequest) UnmarshalEasyJSON(l *jlexer.Lexer) {
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "target_hex":
			v.Target = l.String()
		case "max_level":
			v.MaxLevel = l.Int()
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}

// discoverResponse is the body of a peer discover response.
type discoverResponse struct {
	Found  bool   `json:"found"`
	IdDER  string `json:"id_der_hex,omitempty"`
	Addr   string `json:"addr,omitempty"`
}

func (v discoverResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	w.RawString(`"found":`)
	w.Bool(v.Found)
	w.RawString(`,"id_der_hex":`)
	w.String(v.IdDER)
	w.RawString(`,"addr":`)
	w.String(v.Addr)
	w.RawByte('}')
}

func (v *discoverResponse) UnmarshalEasyJSON(l *jlexer.Lexer) {
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "found":
			v.Found = l.Bool()
		case "id_der_hex":
			v.IdDER = l.String()
		case "addr":
			v.Addr = l.String()
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}

// locateRequest is the body of a peer locate call.
type locateRequest struct {
	Tag string `json:"tag_hex"`
}

func (v locateRequest) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	w.RawString(`"tag_hex":`)
	w.String(v.Tag)
	w.RawByte('}')
}

func (v *locateRequest) UnmarshalEasyJSON(l *jlexer.Lexer) {
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "tag_hex":
			v.Tag = l.String()
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}

// locateResponse is the body of a peer locate response.
type locateResponse struct {
	Present  bool   `json:"present"`
	Redirect bool   `json:"redirect"`
	IdDER    string `json:"id_der_hex,omitempty"`
	Addr     string `json:"addr,omitempty"`
}

func (v locateResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	w.RawString(`"present":`)
	w.Bool(v.Present)
	w.RawString(`,"redirect":`)
	w.Bool(v.Redirect)
	w.RawString(`,"id_der_hex":`)
	w.String(v.IdDER)
	w.RawString(`,"addr":`)
	w.String(v.Addr)
	w.RawByte('}')
}

func (v *locateResponse) UnmarshalEasyJSON(l *jlexer.Lexer) {
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "present":
			v.Present = l.Bool()
		case "redirect":
			v.Redirect = l.Bool()
		case "id_der_hex":
			v.IdDER = l.String()
		case "addr":
			v.Addr = l.String()
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}

// uploadResponse is the body returned by both /peer/upload and
// /data/upload.
type uploadResponse struct {
	Tag string `json:"tag_hex"`
}

func (v uploadResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	w.RawString(`"tag_hex":`)
	w.String(v.Tag)
	w.RawByte('}')
}

func (v *uploadResponse) UnmarshalEasyJSON(l *jlexer.Lexer) {
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "tag_hex":
			v.Tag = l.String()
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}
