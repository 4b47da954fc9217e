package rawmime

import "bytes"

var (
	sepCRLF = []byte("\r\n\r\n")
	sepLF   = []byte("\n\n")
)

// SplitHeaderBody splits a raw message at the first blank line and
// reports which line-ending style terminated the header block. A CRLF
// blank line is preferred over a bare-LF one whenever the message
// contains both. Returns ErrMalformedMessage when no blank line exists
// at all.
func SplitHeaderBody(raw []byte) (header, body, eol []byte, err error) {
	if idx := bytes.Index(raw, sepCRLF); idx >= 0 {
		return raw[:idx], raw[idx+len(sepCRLF):], []byte("\r\n"), nil
	}
	if idx := bytes.Index(raw, sepLF); idx >= 0 {
		return raw[:idx], raw[idx+len(sepLF):], []byte("\n"), nil
	}
	return nil, nil, nil, ErrMalformedMessage
}

// StripPartHeaders splits a MIME part into its own headers and body
// using the same blank-line rule as SplitHeaderBody. A part without a
// blank line is treated as all body with empty headers; this never
// fails.
func StripPartHeaders(part []byte) (header, body []byte) {
	if idx := bytes.Index(part, sepCRLF); idx >= 0 {
		return part[:idx], part[idx+len(sepCRLF):]
	}
	if idx := bytes.Index(part, sepLF); idx >= 0 {
		return part[:idx], part[idx+len(sepLF):]
	}
	return nil, part
}

// TrimTrailingNewline removes a single trailing CRLF or LF. It is
// applied exactly once per artifact: a part ending in two terminators
// keeps one.
func TrimTrailingNewline(b []byte) []byte {
	if bytes.HasSuffix(b, []byte("\r\n")) {
		return b[:len(b)-2]
	}
	if bytes.HasSuffix(b, []byte("\n")) {
		return b[:len(b)-1]
	}
	return b
}

// trimLeadingNewline drops one leading CRLF or LF, tolerating
// generators that put a spurious blank line right after a boundary
// delimiter. Never more than one.
func trimLeadingNewline(b []byte) []byte {
	if bytes.HasPrefix(b, []byte("\r\n")) {
		return b[2:]
	}
	if bytes.HasPrefix(b, []byte("\n")) {
		return b[1:]
	}
	return b
}
