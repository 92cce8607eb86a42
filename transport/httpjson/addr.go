package httpjson

// Addr is an absolute base URL (e.g. "http://[::1]:34093").
type Addr string

func (a Addr) String() string { return string(a) }
