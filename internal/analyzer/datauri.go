package analyzer

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid data uri")

// DataURI es una imagen embebida ya decodificada.
type DataURI struct {
	MediaType string
	Data      []byte
}

// IsImage indica si el tipo declarado es image/*.
func (d DataURI) IsImage() bool {
	return strings.HasPrefix(d.MediaType, "image/")
}

// Extension sugiere una extensión de archivo para el tipo declarado.
func (d DataURI) Extension() string {
	switch d.MediaType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}

// DecodeDataURI interpreta data:<mime>[;base64],<payload>.
func DecodeDataURI(uri string) (DataURI, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, "data:") {
		return DataURI{}, ErrInvalidDataURI
	}
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return DataURI{}, ErrInvalidDataURI
	}

	params := strings.Split(header, ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	if mediaType == "" {
		mediaType = "text/plain"
	}
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// algunos clientes omiten el padding
			decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return DataURI{}, ErrInvalidDataURI
			}
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return DataURI{}, ErrInvalidDataURI
		}
		data = []byte(unescaped)
	}
	if len(data) == 0 {
		return DataURI{}, ErrInvalidDataURI
	}
	return DataURI{MediaType: mediaType, Data: data}, nil
}
