package httpjson

import (
	"io"
	"net/http"

	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

func writeJSON(w http.ResponseWriter, status int, m easyjson.Marshaler) {
	jw := jwriter.Writer{}
	m.MarshalEasyJSON(&jw)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = jw.DumpTo(w)
}

func readJSON(r *http.Request, m easyjson.Unmarshaler) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return unmarshalBytes(body, m)
}

func unmarshalBytes(data []byte, m easyjson.Unmarshaler) error {
	l := jlexer.Lexer{Data: data}
	m.UnmarshalEasyJSON(&l)
	return l.Error()
}
