package filter

import (
	"testing"
)

func TestFilter_Allows_IncludeMode(t *testing.T) {
	opts := Options{
		IncludeHeader: []string{"Subject: Signed"},
	}
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	header := []byte("Subject: Signed release announcement\nFrom: sender@example.com\n")
	body := []byte("This is the message body")

	if !f.Allows(header, body) {
		t.Error("Expected message to be allowed (header matches)")
	}

	headerNoMatch := []byte("Subject: Other\nFrom: sender@example.com\n")
	if f.Allows(headerNoMatch, body) {
		t.Error("Expected message to be filtered out (header doesn't match)")
	}
}

func TestFilter_Allows_ExcludeMode(t *testing.T) {
	opts := Options{
		ExcludeHeader: []string{"mailing-list"},
	}
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	header := []byte("Subject: Normal Message\nFrom: sender@example.com\n")
	body := []byte("This is the message body")

	if !f.Allows(header, body) {
		t.Error("Expected message to be allowed")
	}

	headerList := []byte("Subject: digest\nList-Id: mailing-list <list.example.com>\n")
	if f.Allows(headerList, body) {
		t.Error("Expected message to be filtered out (matches exclude)")
	}
}

func TestFilter_MutuallyExclusive(t *testing.T) {
	opts := Options{
		IncludeHeader: []string{"test"},
		ExcludeHeader: []string{"spam"},
	}
	_, err := New(opts)
	if err == nil {
		t.Error("Expected error when both include and exclude are specified")
	}
}

func TestFilter_NoFilters(t *testing.T) {
	opts := Options{}
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	header := []byte("Subject: Any Message\n")
	body := []byte("Any body content")

	if !f.Allows(header, body) {
		t.Error("Expected message to be allowed when no filters are active")
	}
}

func TestFilter_BodyFiltering(t *testing.T) {
	opts := Options{
		IncludeBody: []string{"BEGIN PGP SIGNATURE"},
	}
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	header := []byte("Subject: Message\n")
	bodyMatch := []byte("-----BEGIN PGP SIGNATURE-----\nabc\n-----END PGP SIGNATURE-----")
	bodyNoMatch := []byte("This is a regular message")

	if !f.Allows(header, bodyMatch) {
		t.Error("Expected message to be allowed (body matches)")
	}

	if f.Allows(header, bodyNoMatch) {
		t.Error("Expected message to be filtered out (body doesn't match)")
	}
}

func TestFilter_AllowsRaw(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		raw  []byte
		want bool
	}{
		{
			name: "header pattern matches header block only",
			opts: Options{IncludeHeader: []string{"multipart/signed"}},
			raw:  []byte("Content-Type: multipart/signed; boundary=X\r\n\r\nbody"),
			want: true,
		},
		{
			name: "header pattern does not see the body",
			opts: Options{IncludeHeader: []string{"needle"}},
			raw:  []byte("Subject: hay\r\n\r\nneedle in the body"),
			want: false,
		},
		{
			name: "message without blank line matched as all header",
			opts: Options{ExcludeHeader: []string{"discard-me"}},
			raw:  []byte("X-Note: discard-me"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.opts)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := f.AllowsRaw(tt.raw); got != tt.want {
				t.Errorf("AllowsRaw() = %v, want %v", got, tt.want)
			}
		})
	}
}
