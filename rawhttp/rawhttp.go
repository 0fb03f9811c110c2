// Package rawhttp holds helpers for inspecting raw HTTP exchanges with the OCR service:
// decoding compressed replies and producing human readable dumps for debug logs.
package rawhttp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/beevik/etree"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/yosssi/gohtml"
)

// Prettify indents a JSON, XML or HTML body. Bodies in any other format yield an empty slice.
// Tunnels in front of the OCR service answer errors with HTML pages, so all three are covered.
func Prettify(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []byte{}, nil
	}

	var jsonData any
	if err := json.Unmarshal(trimmed, &jsonData); err == nil {
		output, err := json.MarshalIndent(jsonData, "", "  ")
		if err != nil {
			return []byte{}, fmt.Errorf("remarshalling JSON: %w", err)
		}
		return output, nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(trimmed); err == nil && doc.Root() != nil {
		doc.Indent(1)
		var output bytes.Buffer
		if _, err := doc.WriteTo(&output); err != nil {
			return []byte{}, fmt.Errorf("writing indented XML : %w", err)
		}
		return output.Bytes(), nil
	}

	contentType := mimetype.Detect(trimmed).String()
	isHTML := strings.Contains(contentType, "text/html") ||
		(bytes.HasPrefix(trimmed, []byte("<")) && !bytes.HasPrefix(trimmed, []byte("<?xml")))
	if isHTML {
		output := gohtml.FormatBytes(trimmed)
		if len(output) > 0 && !bytes.Equal(output, trimmed) {
			return output, nil
		}
	}

	return []byte{}, nil
}

// DumpResponse dumps the status line, headers and body of res and resets the body so it can be consumed again.
// The pretty dump is empty when the body cannot be prettified.
func DumpResponse(res *http.Response) (rawDump []byte, prettyDump string, err error) {
	head, err := httputil.DumpResponse(res, false)
	if err != nil {
		return nil, "", fmt.Errorf("dumping response : %w", err)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response body: %w", err)
	}
	res.Body = io.NopCloser(bytes.NewReader(body))

	rawDump = make([]byte, 0, len(head)+len(body))
	rawDump = append(rawDump, head...)
	rawDump = append(rawDump, body...)

	prettified, err := Prettify(body)
	if err != nil || len(prettified) == 0 {
		return rawDump, "", nil
	}
	return rawDump, string(head) + string(prettified), nil
}

// Decompress replaces a gzip or brotli encoded res.Body with the decoded bytes,
// removes the Content-Encoding header and fixes the Content-Length.
// Bodies with any other encoding are left untouched.
func Decompress(res *http.Response) error {
	if res.Body == nil {
		return nil
	}

	var reader io.Reader
	switch strings.ToLower(strings.TrimSpace(res.Header.Get("Content-Encoding"))) {
	case "gzip":
		gzipReader, err := gzip.NewReader(res.Body)
		if err != nil {
			return fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	case "br":
		reader = brotli.NewReader(res.Body)
	default:
		return nil
	}

	decompressed, err := io.ReadAll(reader)
	res.Body.Close()
	if err != nil {
		return fmt.Errorf("reading %s content: %w", res.Header.Get("Content-Encoding"), err)
	}

	res.Body = io.NopCloser(bytes.NewReader(decompressed))
	res.ContentLength = int64(len(decompressed))
	res.Header.Set("Content-Length", strconv.Itoa(len(decompressed)))
	res.Header.Del("Content-Encoding")
	res.Uncompressed = true
	return nil
}
