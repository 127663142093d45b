package polish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Transport issues one polish request and exposes the response as a
// cancellable chunk stream.
type Transport interface {
	Open(ctx context.Context, req Request) (Stream, error)
}

// HTTPTransport talks to the polish endpoint over HTTP. The response body is
// raw UTF-8 text with no framing; it is chunked on read boundaries.
type HTTPTransport struct {
	ServiceURL string
	Client     *http.Client
}

func NewHTTPTransport(serviceURL string) *HTTPTransport {
	return &HTTPTransport{
		ServiceURL: serviceURL,
		Client:     http.DefaultClient,
	}
}

type wireRequest struct {
	Content     string `json:"content"`
	APIKey      string `json:"apiKey"`
	APIEndpoint string `json:"apiEndpoint,omitempty"`
	Model       string `json:"model"`
	ModelType   string `json:"modelType"`
}

// Open starts the request. Negotiation happens inside the stream producer,
// so Open itself does not block; negotiation failures arrive via Recv.
func (t *HTTPTransport) Open(ctx context.Context, req Request) (Stream, error) {
	body, err := json.Marshal(wireRequest{
		Content:     req.Content,
		APIKey:      req.Config.APIKey,
		APIEndpoint: req.Config.Endpoint,
		Model:       req.Config.Model,
		ModelType:   req.Config.Provider,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding polish request: %w", err)
	}

	return newChunkStream(ctx, func(ctx context.Context, ch chan<- segment) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.ServiceURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("building polish request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		client := t.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &TransportError{
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(snippet)),
			}
		}

		return readChunks(ctx, resp.Body, ch)
	}), nil
}

// readChunks pumps body reads into the segment channel. Incomplete trailing
// runes are carried into the next read so every emitted chunk is valid UTF-8.
func readChunks(ctx context.Context, body io.Reader, ch chan<- segment) error {
	buf := make([]byte, 4096)
	var rem []byte
	var offset int64

	for {
		n, err := body.Read(buf)
		if n > 0 {
			data := append(rem, buf[:n]...)
			// data begins at stream offset offset-len(rem): the carried
			// remainder was counted when it was first read.
			start := offset - int64(len(rem))
			offset += int64(n)
			valid, hold, ok := splitUTF8(data)
			if !ok {
				return &DecodeError{Offset: start + int64(validPrefixLen(data))}
			}
			rem = append(rem[:0:0], hold...)
			if len(valid) > 0 {
				select {
				case ch <- segment{text: string(valid)}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		if err == io.EOF {
			if len(rem) > 0 {
				return &DecodeError{Offset: offset - int64(len(rem))}
			}
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading polish stream: %w", err)
		}
	}
}

// validPrefixLen returns the length of the longest valid UTF-8 prefix of
// data, stopping at the first byte no decoding can absorb.
func validPrefixLen(data []byte) int {
	n := 0
	for n < len(data) {
		r, size := utf8.DecodeRune(data[n:])
		if r == utf8.RuneError && size <= 1 {
			return n
		}
		n += size
	}
	return n
}

// splitUTF8 splits data into a valid UTF-8 prefix and an incomplete trailing
// rune to carry over. ok is false when the data contains bytes that cannot be
// completed by any subsequent read.
func splitUTF8(data []byte) (valid, rem []byte, ok bool) {
	if utf8.Valid(data) {
		return data, nil, true
	}
	for i := len(data) - 1; i >= 0 && len(data)-i < utf8.UTFMax; i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}
		head, tail := data[:i], data[i:]
		if !utf8.Valid(head) || !incompleteRune(tail) {
			return nil, nil, false
		}
		return head, tail, true
	}
	return nil, nil, false
}

// incompleteRune reports whether p is a strict prefix of one valid multi-byte
// rune encoding.
func incompleteRune(p []byte) bool {
	if len(p) == 0 || len(p) >= utf8.UTFMax {
		return false
	}
	want := runeLen(p[0])
	if want <= len(p) {
		return false
	}
	for _, b := range p[1:] {
		if b&0xC0 != 0x80 {
			return false
		}
	}
	return true
}

func runeLen(lead byte) int {
	switch {
	case lead&0x80 == 0:
		return 1
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}
