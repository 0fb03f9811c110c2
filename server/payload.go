package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/avohilabs/destiin"
)

const (
	maxBodyBytes   = 32 << 20
	maxMemoryBytes = 8 << 20
)

// ErrMissingBody is returned when a request carries neither a data field nor a body.
var ErrMissingBody = &destiin.ValidationError{Message: "Missing request body"}

// parseForm parses query, urlencoded and multipart parameters. JSON bodies are left unread.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
			return fmt.Errorf("parsing multipart form: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parsing form: %w", err)
	}
	return nil
}

// readJSONBody returns the trimmed request body. Bodies of form requests have already been consumed.
func readJSONBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	return bytes.TrimSpace(body), nil
}

func decodeObject(raw []byte) (destiin.Payload, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var payload destiin.Payload
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding request body: %w", err)
	}
	if payload == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return payload, nil
}

// decodePayload reads the method payload: a JSON "data" parameter wins over a raw JSON body.
func decodePayload(w http.ResponseWriter, r *http.Request) (destiin.Payload, error) {
	if err := parseForm(w, r); err != nil {
		return nil, err
	}
	raw := []byte(r.Form.Get("data"))
	if len(bytes.TrimSpace(raw)) == 0 {
		body, err := readJSONBody(r)
		if err != nil {
			return nil, err
		}
		raw = body
	}
	if len(raw) == 0 {
		return nil, ErrMissingBody
	}
	return decodeObject(raw)
}

// uploadParams reads image_data and filename from form parameters or a JSON body.
func uploadParams(w http.ResponseWriter, r *http.Request) (imageData, filename string, err error) {
	if err := parseForm(w, r); err != nil {
		return "", "", err
	}
	imageData, filename = r.Form.Get("image_data"), r.Form.Get("filename")
	if imageData != "" || filename != "" {
		return imageData, filename, nil
	}

	body, err := readJSONBody(r)
	if err != nil {
		return "", "", err
	}
	if len(body) == 0 {
		return "", "", nil
	}
	payload, err := decodeObject(body)
	if err != nil {
		return "", "", err
	}
	imageData, _ = payload.String("image_data")
	filename, _ = payload.String("filename")
	return imageData, filename, nil
}
