package classify

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/ppiankov/textbench/internal/model"
)

// envelope tags an encoded model with its algorithm so Decode can pick the
// concrete type back out of the registry
type envelope struct {
	Algorithm model.Algorithm
	Body      []byte
}

// Encode serializes a fitted model
func Encode(c Classifier) ([]byte, error) {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(c); err != nil {
		return nil, fmt.Errorf("encode %s model: %w", c.Algorithm(), err)
	}

	var out bytes.Buffer
	env := envelope{Algorithm: c.Algorithm(), Body: body.Bytes()}
	if err := gob.NewEncoder(&out).Encode(env); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return out.Bytes(), nil
}

// Decode restores a model written by Encode
func Decode(data []byte) (Classifier, error) {
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	entry, ok := registry[env.Algorithm]
	if !ok {
		return nil, fmt.Errorf("unknown classifier type: %s", env.Algorithm)
	}
	c, err := entry.decode(env.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s model: %w", env.Algorithm, err)
	}
	return c, nil
}

func decodeBody[T any](body []byte) (*T, error) {
	var v T
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
