package extractor

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhcgn/pgp-sig-extract/rawmime"
)

const (
	MessageFileName   = "message.txt"
	SignatureFileName = "signature.asc"

	contentTypePgpSignature = "application/pgp-signature"
)

// Result names the two files written by a successful run.
type Result struct {
	MessagePath   string
	SignaturePath string
	EntitySize    int64
	ArmorSize     int64
}

// Run parses one raw message and commits both artifacts into outDir.
// Nothing is written when parsing fails; the directory is created only
// after the extraction succeeded.
func Run(raw []byte, outDir string, logger *slog.Logger) (Result, error) {
	extraction, err := rawmime.Extract(raw)
	if err != nil {
		return Result{}, err
	}

	if mediaType := signaturePartMediaType(extraction.SignatureHeaders); mediaType != "" && mediaType != contentTypePgpSignature {
		if logger != nil {
			logger.Warn("signature part has unexpected media type", "contentType", mediaType, "want", contentTypePgpSignature)
		}
	}

	return writeArtifacts(outDir, extraction)
}

func writeArtifacts(outDir string, extraction rawmime.Extraction) (Result, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output directory %s: %w", outDir, err)
	}

	result := Result{
		MessagePath:   filepath.Join(outDir, MessageFileName),
		SignaturePath: filepath.Join(outDir, SignatureFileName),
		EntitySize:    int64(len(extraction.SignedEntity)),
		ArmorSize:     int64(len(extraction.SignatureArmor)),
	}

	if err := writeFile(result.MessagePath, extraction.SignedEntity); err != nil {
		return Result{}, err
	}
	if err := writeFile(result.SignaturePath, extraction.SignatureArmor); err != nil {
		return Result{}, err
	}

	return result, nil
}

func writeFile(path string, data []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// signaturePartMediaType reads the Content-Type out of the signature
// part's own headers for the advisory warning. Metadata only; the
// artifact bytes are committed untouched either way.
func signaturePartMediaType(headers []byte) string {
	for _, line := range strings.Split(string(headers), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if len(line) < len("content-type:") || !strings.EqualFold(line[:len("content-type:")], "content-type:") {
			continue
		}
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(line[len("content-type:"):]))
		if err != nil {
			return ""
		}
		return mediaType
	}
	return ""
}
