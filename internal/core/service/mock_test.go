package service_test

import (
	"context"
	"io"
	"sync"

	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockTableReader struct {
	mock.Mock
}

func (r *MockTableReader) ReadTable(
	ctx context.Context, src domain.Source, columns []string,
) (domain.Table, error) {
	args := r.Called(ctx, src, columns)
	return args.Get(0).(domain.Table), args.Error(1)
}

type MockSpreadsheetWriter struct {
	mock.Mock
}

func (w *MockSpreadsheetWriter) WriteProducts(
	out io.Writer, rows []domain.PricedRow,
) error {
	args := w.Called(out, rows)
	return args.Error(0)
}

func (w *MockSpreadsheetWriter) WriteSelection(
	out io.Writer, lines []domain.SelectionLine,
) error {
	args := w.Called(out, lines)
	return args.Error(0)
}

type MockEventsProducer struct {
	mock.Mock
}

func (p *MockEventsProducer) ProduceSearchEvent(
	ctx context.Context, e domain.SearchEvent,
) {
	p.Called(ctx, e)
}

type memStore struct {
	mu   sync.Mutex
	data map[string]domain.Selection
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]domain.Selection)}
}

func (s *memStore) LoadSelection(
	_ context.Context, sid string,
) (domain.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[sid], nil
}

func (s *memStore) SaveSelection(
	_ context.Context, sid string, sel domain.Selection,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sid] = sel
	return nil
}

func (s *memStore) DeleteSelection(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sid)
	return nil
}
