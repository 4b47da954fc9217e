// Package rawmime locates and slices the two child parts of a
// multipart/signed message without re-encoding any byte of the input.
// Everything works on offsets into the original buffer; the signed
// entity has to come out exactly as it was sent or signature
// verification fails.
package rawmime

import "errors"

var (
	ErrMalformedMessage       = errors.New("no header/body separator found")
	ErrMissingContentType     = errors.New("top-level Content-Type header not found")
	ErrUnexpectedMediaType    = errors.New("top-level message is not multipart/signed")
	ErrMissingBoundary        = errors.New("no boundary parameter on multipart/signed Content-Type")
	ErrInsufficientBoundaries = errors.New("not enough boundary delimiters in multipart/signed body")
	ErrNoClosingBoundary      = errors.New("closing boundary not found")
	ErrNotEnoughParts         = errors.New("not enough parts before the closing boundary")
)

// Extraction holds the finalized artifacts of one run. SignedEntity and
// SignatureArmor are the bytes to hand to an external verification tool;
// SignatureHeaders are the signature part's own headers, kept for
// advisory inspection only.
type Extraction struct {
	SignedEntity     []byte
	SignatureArmor   []byte
	SignatureHeaders []byte
	EOL              []byte
}

// Extract runs the full pipeline over a raw RFC 5322 message: split top
// headers from body, pull the boundary token, index the delimiter lines,
// slice out the two parts and finalize them. The input is never
// modified; the returned slices alias it.
func Extract(raw []byte) (Extraction, error) {
	header, body, eol, err := SplitHeaderBody(raw)
	if err != nil {
		return Extraction{}, err
	}

	token, err := ExtractBoundary(header)
	if err != nil {
		return Extraction{}, err
	}

	marks, err := ScanDelimiters(body, token)
	if err != nil {
		return Extraction{}, err
	}

	signedEntity, sigContainer, err := SliceParts(body, marks)
	if err != nil {
		return Extraction{}, err
	}

	sigHeaders, sigBody := StripPartHeaders(sigContainer)

	return Extraction{
		SignedEntity:     TrimTrailingNewline(signedEntity),
		SignatureArmor:   TrimTrailingNewline(sigBody),
		SignatureHeaders: sigHeaders,
		EOL:              eol,
	}, nil
}
