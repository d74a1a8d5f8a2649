package codec

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/francoispqt/gojay"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"github.com/viant/lifecycle/factory"
	"github.com/viant/lifecycle/key"
)

const Kind = "serializer"

var (
	JSON = key.Named(Kind, "json")
	CBOR = key.Named(Kind, "cbor")
)

// Serializer converts values to and from a wire format
type Serializer interface {
	Serialize(value interface{}) ([]byte, error)
	Deserialize(data []byte) (interface{}, error)
	DeserializeInto(data []byte, target interface{}) error
}

type jsonSerializer struct{}

// Serialize uses gojay for types implementing MarshalerJSONObject
func (s *jsonSerializer) Serialize(value interface{}) ([]byte, error) {
	if marshaler, ok := value.(gojay.MarshalerJSONObject); ok {
		return gojay.MarshalJSONObject(marshaler)
	}
	return json.Marshal(value)
}

func (s *jsonSerializer) Deserialize(data []byte) (interface{}, error) {
	var result interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrapf(err, "failed to decode json")
	}
	return result, nil
}

func (s *jsonSerializer) DeserializeInto(data []byte, target interface{}) error {
	if unmarshaler, ok := target.(gojay.UnmarshalerJSONObject); ok {
		return gojay.UnmarshalJSONObject(data, unmarshaler)
	}
	return json.Unmarshal(data, target)
}

type cborSerializer struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func (s *cborSerializer) Serialize(value interface{}) ([]byte, error) {
	return s.enc.Marshal(value)
}

func (s *cborSerializer) Deserialize(data []byte) (interface{}, error) {
	var result interface{}
	if err := s.dec.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrapf(err, "failed to decode cbor")
	}
	return result, nil
}

func (s *cborSerializer) DeserializeInto(data []byte, target interface{}) error {
	return s.dec.Unmarshal(data, target)
}

func newCBOR() (*cborSerializer, error) {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dec, err := cbor.DecOptions{DefaultMapType: reflect.TypeOf(map[string]interface{}{})}.DecMode()
	if err != nil {
		return nil, err
	}
	return &cborSerializer{enc: enc, dec: dec}, nil
}

// Register registers built-in serializers
func Register(registry *factory.Registry[Serializer]) error {
	if err := registry.Register(JSON, func(ctx context.Context, args ...interface{}) (Serializer, error) {
		return &jsonSerializer{}, nil
	}, factory.WithDoc("JSON text, gojay for objects implementing its interfaces")); err != nil {
		return err
	}
	return registry.Register(CBOR, func(ctx context.Context, args ...interface{}) (Serializer, error) {
		return newCBOR()
	}, factory.WithDoc("canonical CBOR binary"))
}
