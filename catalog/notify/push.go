package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/francoispqt/gojay"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/viant/lifecycle/config"
)

// Message represents push notification payload
type Message struct {
	ID      string
	User    string
	Message string
}

// MarshalJSONObject implements MarshalerJSONObject
func (m *Message) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("ID", m.ID)
	enc.StringKey("User", m.User)
	enc.StringKey("Message", m.Message)
}

// IsNil checks if instance is nil
func (m *Message) IsNil() bool {
	return m == nil
}

// UnmarshalJSONObject implements gojay's UnmarshalerJSONObject
func (m *Message) UnmarshalJSONObject(dec *gojay.Decoder, k string) error {
	switch k {
	case "ID":
		return dec.String(&m.ID)
	case "User":
		return dec.String(&m.User)
	case "Message":
		return dec.String(&m.Message)
	}
	return nil
}

// NKeys returns the number of keys to unmarshal
func (m *Message) NKeys() int { return 3 }

// PushNotifier delivers messages to a push gateway, without URL it only formats them
type PushNotifier struct {
	config *config.Push
	client *http.Client
	mux    sync.RWMutex
}

// Send sends the message
func (p *PushNotifier) Send(ctx context.Context, user, message string) (string, error) {
	result := format("PUSH", user, message)
	if p.config == nil || p.config.URL == "" {
		return result, nil
	}
	payload := &Message{ID: uuid.New().String(), User: user, Message: message}
	request, err := p.httpRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	response, err := p.httpClient().Do(request)
	if err != nil {
		return "", errors.Wrapf(err, "failed to push message %v", payload.ID)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)
	if response.StatusCode/100 != 2 {
		return "", fmt.Errorf("failed to push message %v: status %v", payload.ID, response.StatusCode)
	}
	return result, nil
}

func (p *PushNotifier) httpRequest(ctx context.Context, payload *Message) (*http.Request, error) {
	data, err := gojay.MarshalJSONObject(payload)
	if err != nil {
		return nil, err
	}
	shallCompress := p.config.CompressionSize() > 0 && len(data) > p.config.CompressionSize()
	if shallCompress {
		if data, err = compressContent(data); err != nil {
			return nil, err
		}
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.URL, bytes.NewReader(data))
	if err == nil {
		request.Header.Set("Content-Type", "application/json")
		if shallCompress {
			request.Header.Set("Content-Encoding", "gzip")
		}
	}
	return request, err
}

func (p *PushNotifier) httpClient() *http.Client {
	p.mux.RLock()
	client := p.client
	p.mux.RUnlock()
	if client != nil {
		return client
	}
	roundTripper := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: p.config.Timeout(),
		}).DialContext,
		MaxIdleConns:          100,
		ResponseHeaderTimeout: p.config.Timeout(),
		DisableCompression:    true,
	}
	p.mux.Lock()
	client = &http.Client{Transport: roundTripper, Timeout: p.config.Timeout()}
	p.client = client
	p.mux.Unlock()
	return client
}

// NewPush creates a push notifier
func NewPush(cfg *config.Push) *PushNotifier {
	return &PushNotifier{config: cfg}
}
