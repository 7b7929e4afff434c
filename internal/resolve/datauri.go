package resolve

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/ironsheep/quick-view-mcp/internal/failure"
	"github.com/ironsheep/quick-view-mcp/internal/imaging"
)

// ParseDataURI decodes an image data URI into its media type and payload.
//
// Both base64 and percent-encoded payloads are accepted. The media type must
// be one of the supported image types.
func ParseDataURI(uri string) (string, []byte, error) {
	if len(uri) < 5 || !strings.EqualFold(uri[:5], "data:") {
		return "", nil, failure.New(failure.KindResolve, "not a data URI")
	}
	meta, payload, ok := strings.Cut(uri[5:], ",")
	if !ok {
		return "", nil, failure.New(failure.KindResolve, "data URI has no payload separator")
	}

	params := strings.Split(meta, ";")
	mime := strings.ToLower(strings.TrimSpace(params[0]))
	if mime == "" {
		mime = "text/plain"
	}
	isBase64 := strings.EqualFold(strings.TrimSpace(params[len(params)-1]), "base64")

	if imaging.FormatFromMIME(mime) == imaging.Unsupported {
		return "", nil, failure.New(failure.KindResolve, "unsupported data URI media type %q", mime)
	}

	var data []byte
	var err error
	if isBase64 {
		data, err = decodeBase64(payload)
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		data = []byte(s)
	}
	if err != nil {
		return "", nil, failure.Wrap(failure.KindResolve, "decode data URI payload", err)
	}
	if len(data) == 0 {
		return "", nil, failure.New(failure.KindResolve, "empty data URI payload")
	}
	return mime, data, nil
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, payload)
	if payload, err := url.PathUnescape(payload); err == nil {
		if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
			return data, nil
		}
		if len(payload)%4 != 0 {
			return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
	}
	return base64.StdEncoding.DecodeString(payload)
}

// DataLocator returns a stable identifier for in-memory image content.
func DataLocator(mime string, data []byte) string {
	return "data:" + mime + ";sha256," + Digest(data)
}

// Digest returns the hex SHA-256 of data. It serves as the freshness signal
// of content that has no modification time.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
