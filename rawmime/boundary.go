package rawmime

import (
	"bytes"
	"regexp"
)

var contentTypePrefix = []byte("content-type:")

// boundaryParamRe accepts both boundary=token and boundary="token". RE2
// has no backreferences, so the quotes are individually optional; the
// value character class excludes quotes, semicolons and whitespace, which
// makes the two forms yield the same token.
var boundaryParamRe = regexp.MustCompile(`(?i)boundary="?([^";\s]+)"?`)

// ExtractBoundary parses raw top-level headers and returns the
// multipart/signed boundary token, without quotes, otherwise
// byte-for-byte as written. The headers are unfolded only logically;
// no byte of the input buffer is touched.
func ExtractBoundary(header []byte) ([]byte, error) {
	var contentType []byte
	found := false
	for _, line := range unfoldLines(header) {
		if bytes.HasPrefix(bytes.ToLower(line), contentTypePrefix) {
			contentType = bytes.TrimSpace(line[len(contentTypePrefix):])
			found = true
			break
		}
	}
	if !found {
		return nil, ErrMissingContentType
	}

	if !bytes.Contains(bytes.ToLower(contentType), []byte("multipart/signed")) {
		return nil, ErrUnexpectedMediaType
	}

	m := boundaryParamRe.FindSubmatch(contentType)
	if m == nil {
		return nil, ErrMissingBoundary
	}
	return m[1], nil
}

// unfoldLines splits a header block into logical lines: a line starting
// with space or tab is a continuation and is concatenated onto the
// previous line with nothing inserted between them. Continuations are
// copied so that joining never writes into the caller's buffer.
func unfoldLines(header []byte) [][]byte {
	var logical [][]byte
	for _, line := range bytes.Split(header, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))
		if len(logical) > 0 && (bytes.HasPrefix(line, []byte(" ")) || bytes.HasPrefix(line, []byte("\t"))) {
			prev := logical[len(logical)-1]
			joined := make([]byte, 0, len(prev)+len(line))
			joined = append(joined, prev...)
			joined = append(joined, line...)
			logical[len(logical)-1] = joined
			continue
		}
		logical = append(logical, line)
	}
	return logical
}

// DelimiterMark is one boundary delimiter line found in a body: the
// byte range it occupies, terminator included, and whether it is the
// closing --token-- form.
type DelimiterMark struct {
	Start   int
	End     int
	Closing bool
}

// ScanDelimiters indexes every boundary delimiter line in document
// order. A delimiter is a line-start-anchored "--" plus the token,
// optionally "--" for the closing form, optional trailing spaces or
// tabs, then CRLF or LF. Token occurrences inside part content do not
// match without the anchor and terminator. Fewer than two marks means
// the body cannot hold two parts.
func ScanDelimiters(body, token []byte) ([]DelimiterMark, error) {
	re := regexp.MustCompile(`(?m)^--` + regexp.QuoteMeta(string(token)) + `(--)?[ \t]*\r?\n`)

	var marks []DelimiterMark
	for _, loc := range re.FindAllSubmatchIndex(body, -1) {
		marks = append(marks, DelimiterMark{
			Start:   loc[0],
			End:     loc[1],
			Closing: loc[2] >= 0,
		})
	}

	if len(marks) < 2 {
		return nil, ErrInsufficientBoundaries
	}
	return marks, nil
}

// SliceParts carves the signed entity and the signature container out
// of the body using the delimiter index. Part one lies between marks 0
// and 1, part two between mark 1 and the first closing mark. Preamble,
// epilogue and any marks past the first closing one are ignored. Each
// part drops at most one leading line terminator.
func SliceParts(body []byte, marks []DelimiterMark) (signedEntity, sigContainer []byte, err error) {
	closingIdx := -1
	for i, m := range marks {
		if m.Closing {
			closingIdx = i
			break
		}
	}
	if closingIdx < 0 {
		return nil, nil, ErrNoClosingBoundary
	}
	if closingIdx < 2 {
		return nil, nil, ErrNotEnoughParts
	}

	signedEntity = trimLeadingNewline(body[marks[0].End:marks[1].Start])
	sigContainer = trimLeadingNewline(body[marks[1].End:marks[closingIdx].Start])
	return signedEntity, sigContainer, nil
}
