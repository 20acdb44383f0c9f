package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.SearchEventsProducer = (*SearchEventsProducer)(nil)

// A SearchEventsProducer produces [domain.SearchEvent] without
// waiting for the broker. Failures are only logged.
type SearchEventsProducer struct {
	cl      ProducerClient
	encoder Encoder
}

func NewSearchEventsProducer(
	opts ...ProducerOpt,
) (*SearchEventsProducer, error) {
	const op = "NewSearchEventsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, opErr(err, op)
		}
	}
	return &SearchEventsProducer{options.cl, options.encoder}, nil
}

func (p *SearchEventsProducer) ProduceSearchEvent(
	ctx context.Context, e domain.SearchEvent,
) {
	const op = "SearchEventsProducer.ProduceSearchEvent"
	log := slog.With("op", op)

	v, err := p.encoder.Encode(searchEventToSchemaV1(e))
	if err != nil {
		log.Error("failed to encode search event", "err", err)
		return
	}

	r := &kgo.Record{Key: []byte(e.SessionID), Value: v}
	p.cl.Produce(context.WithoutCancel(ctx), r, func(_ *kgo.Record, err error) {
		if err != nil {
			log.Error("failed to produce search event", "err", err)
		}
	})
}

// Close flushes buffered records until ctx is done and closes
// the client.
func (p *SearchEventsProducer) Close(ctx context.Context) {
	const op = "SearchEventsProducer.Close"
	log := slog.With("op", op)

	log.Info("closing producer...")
	if err := p.cl.Flush(ctx); err != nil {
		log.Warn("failed to flush records", "err", err)
	}
	p.cl.Close()
	log.Info("producer is closed")
}
