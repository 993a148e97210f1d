package dashboard

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"strings"
)

// ResponseKind discriminates the decoded response variants.
type ResponseKind int

const (
	// KindStructured is data decoded from an application/json body.
	KindStructured ResponseKind = iota
	// KindBinary is a CSV/PDF/image/office payload, base64-encoded.
	KindBinary
	// KindText is the fallback for every other content type.
	KindText
)

// Response is the decoded result of a dispatched request. The Kind field
// selects which of the remaining fields are populated; the classification
// happens exactly once, at the HTTP boundary.
type Response struct {
	Kind ResponseKind

	// Value holds the decoded JSON payload (KindStructured).
	Value any

	// Text holds the body as-is (KindText).
	Text string

	// ContentType is the media type without parameters and Data the
	// base64-encoded body (KindBinary).
	ContentType string
	Data        string
}

const contentTypeJSON = "application/json"

// decodeResponse classifies a successful response body by its declared
// content type. An unparseable or absent content-type header falls through
// to the plain-text variant.
func decodeResponse(contentType string, body []byte) (*Response, error) {
	mediaType := contentType
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = mt
	}

	switch {
	case mediaType == contentTypeJSON:
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("decoding JSON response: %w", err)
		}
		return &Response{Kind: KindStructured, Value: v}, nil

	case isBinaryMediaType(mediaType):
		return &Response{
			Kind:        KindBinary,
			ContentType: mediaType,
			Data:        base64.StdEncoding.EncodeToString(body),
		}, nil

	default:
		return &Response{Kind: KindText, Text: string(body)}, nil
	}
}

// isBinaryMediaType reports whether the media type is returned to callers
// as base64 rather than text: CSV, PDF, images, and the Microsoft office
// document families.
func isBinaryMediaType(mediaType string) bool {
	switch mediaType {
	case "text/csv", "application/pdf":
		return true
	}
	if strings.HasPrefix(mediaType, "image/") {
		return true
	}
	return strings.HasPrefix(mediaType, "application/vnd.openxmlformats-officedocument.") ||
		strings.HasPrefix(mediaType, "application/vnd.ms-")
}
