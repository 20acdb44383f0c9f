// Package kafka produces domain events to Kafka topics.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/pkg/retry"
	"github.com/niksmo/refsearch/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts = errors.New("too few options")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// ProducerClientOpt dials the seed brokers and waits until they
// answer, retrying with backoff.
//
// tlsConfig may be nil.
func ProducerClientOpt(
	ctx context.Context,
	seedBrokers []string,
	topic string,
	tlsConfig *tls.Config,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kopts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.ProducerLinger(50 * time.Millisecond),
		}
		if tlsConfig != nil {
			kopts = append(kopts, kgo.DialTLSConfig(tlsConfig))
		}

		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}

		err = retry.Do(ctx, retry.Startup(), func() error {
			return cl.Ping(ctx)
		})
		if err != nil {
			cl.Close()
			return err
		}

		opts.cl = cl
		return nil
	}
}

// ProducerTestClientOpt sets a ready client.
func ProducerTestClientOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	Produce(
		ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error),
	)
	Flush(context.Context) error
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func searchEventToSchemaV1(e domain.SearchEvent) (s schema.SearchEventV1) {
	s.SessionID = e.SessionID
	s.Query = e.Predicates.Query
	s.OEE = e.Predicates.OEE
	s.Catalog = e.Predicates.Catalog
	s.LongDescription = e.Predicates.LongDescription
	s.StockingTypes = e.Predicates.StockingTypes
	if s.StockingTypes == nil {
		s.StockingTypes = []string{}
	}
	s.InStock = e.Predicates.InStock
	s.Results = int64(e.Results)
	s.OccurredAt = e.At
	return s
}
