package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const SearchEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "refsearch",
	"name": "search_event",
	"fields": [
		{"name": "session_id", "type": "string"},
		{"name": "query", "type": "string"},
		{"name": "oee", "type": "string"},
		{"name": "catalog", "type": "string"},
		{"name": "long_description", "type": "string"},
		{"name": "stocking_types", "type": {"type": "array", "items": "string"}},
		{"name": "in_stock", "type": "boolean"},
		{"name": "results", "type": "long"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type SearchEventV1 struct {
	SessionID       string    `avro:"session_id"`
	Query           string    `avro:"query"`
	OEE             string    `avro:"oee"`
	Catalog         string    `avro:"catalog"`
	LongDescription string    `avro:"long_description"`
	StockingTypes   []string  `avro:"stocking_types"`
	InStock         bool      `avro:"in_stock"`
	Results         int64     `avro:"results"`
	OccurredAt      time.Time `avro:"occurred_at"`
}

// SearchEventV1Avro panics when the schema text is invalid.
func SearchEventV1Avro() avro.Schema {
	return avro.MustParse(SearchEventSchemaTextV1)
}
