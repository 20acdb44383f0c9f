// Package schema holds the versioned Avro schemas of the produced
// records and their schema registry serdes.
package schema

import (
	"context"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

func AvroEncodeFn(s avro.Schema) func(v any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		return avro.Marshal(s, v)
	}
}

func AvroDecodeFn(s avro.Schema) func([]byte, any) error {
	return func(data []byte, v any) error {
		return avro.Unmarshal(s, data, v)
	}
}

// A SchemaIdentifier returns the registry id of a subject schema,
// registering it when absent.
type SchemaIdentifier interface {
	DetermineID(ctx context.Context, subject, avroSchemaText string) (int, error)
}

var _ SchemaIdentifier = (*RegistryIdentifier)(nil)

type RegistryIdentifier struct {
	cl *sr.Client
}

func NewRegistryIdentifier(opts ...sr.ClientOpt) (*RegistryIdentifier, error) {
	const op = "NewRegistryIdentifier"

	cl, err := sr.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &RegistryIdentifier{cl}, nil
}

func (r *RegistryIdentifier) DetermineID(
	ctx context.Context, subject, avroSchemaText string,
) (int, error) {
	const op = "RegistryIdentifier.DetermineID"

	ss, err := r.cl.CreateSchema(ctx, subject, sr.Schema{
		Schema: avroSchemaText,
		Type:   sr.TypeAvro,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return ss.ID, nil
}
