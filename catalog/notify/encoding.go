package notify

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"
)

func compressContent(data []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	writer := gzip.NewWriter(buf)
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadPayload reads request body, inflating gzip encoded content
func ReadPayload(request *http.Request) ([]byte, error) {
	data, err := io.ReadAll(request.Body)
	if err != nil {
		return nil, err
	}
	encoding := request.Header.Get("Content-Encoding")
	if encoding == "" {
		return data, nil
	}
	if strings.ToLower(encoding) != "gzip" {
		return nil, fmt.Errorf("unsupported encoding: %v", encoding)
	}
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(reader)
}
