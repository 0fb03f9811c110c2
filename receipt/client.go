package receipt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/avohilabs/destiin/rawhttp"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single parse call, OCR of a photographed bill can be slow.
const DefaultTimeout = 90 * time.Second

// fallbackContentType is sent when the upload cannot be identified as an image.
const fallbackContentType = "image/jpeg"

// Parser turns a receipt image into structured data.
type Parser interface {
	Parse(ctx context.Context, filename string, content []byte) (*Parsed, error)
}

// StatusError is returned when the OCR service answers with anything but 200 OK.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Failed to parse receipt: %s", e.Body)
}

// Client is the HTTP implementation of Parser.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
	debug      bool
}

var _ Parser = (*Client)(nil)

// NewClient creates a client for the OCR endpoint at url.
func NewClient(url string, options ...func(*Client)) *Client {
	client := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) func(*Client) {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the timeout of the underlying HTTP client. Non positive values are ignored.
func WithTimeout(timeout time.Duration) func(*Client) {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) func(*Client) {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug logs a dump of every OCR reply at debug level.
func WithDebug(debug bool) func(*Client) {
	return func(c *Client) {
		c.debug = debug
	}
}

// Parse uploads the receipt image and decodes the reply.
func (c *Client) Parse(ctx context.Context, filename string, content []byte) (*Parsed, error) {
	body, contentType, err := buildUpload(filename, content)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("creating parse request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling receipt parser: %w", err)
	}
	defer res.Body.Close()

	if err := rawhttp.Decompress(res); err != nil {
		return nil, fmt.Errorf("decoding receipt parser reply: %w", err)
	}

	if c.debug {
		if _, pretty, err := rawhttp.DumpResponse(res); err == nil && pretty != "" {
			c.logger.Debug("receipt parser reply", zap.String("dump", pretty))
		}
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading receipt parser reply: %w", err)
	}

	c.logger.Info("receipt parsed",
		zap.String("filename", filename),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if res.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: res.StatusCode, Body: string(raw)}
	}

	parsed, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("parsed receipt data", zap.ByteString("parsed", raw))
	return parsed, nil
}

// buildUpload writes the multipart body expected by the parser.
func buildUpload(filename string, content []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", DetectImageType(content))

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", fmt.Errorf("writing file part: %w", err)
	}
	if err := writer.WriteField("page_range", "1"); err != nil {
		return nil, "", fmt.Errorf("writing page_range: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

// DetectImageType sniffs the MIME type of an uploaded receipt, falling back to image/jpeg
// for content that is not recognisably an image.
func DetectImageType(content []byte) string {
	mtype := mimetype.Detect(content)
	if strings.HasPrefix(mtype.String(), "image/") {
		return mtype.String()
	}
	return fallbackContentType
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
