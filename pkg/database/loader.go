package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clv-dashboard/pkg/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrMissingColumn   = errors.New("missing required column")
	ErrUnsupportedType = errors.New("unsupported column type")
	ErrNullValue       = errors.New("null value in required column")
	ErrUnknownSegment  = errors.New("segment outside the closed set")
	ErrNonFiniteValue  = errors.New("non-finite value in numeric column")
)

// LoadError is returned when a table cannot be read or does not match the expected schema.
// The dashboard cannot render without both tables, so callers treat it as fatal.
type LoadError struct {
	Source string // file path or table name
	Op     string // open, read, schema, decode, validate
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Source, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func loadErr(source, op string, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return err
	}
	return &LoadError{Source: source, Op: op, Err: err}
}

// Source reads the two precomputed tables from some storage.
type Source interface {
	Name() string
	ReadCustomers(ctx context.Context) ([]models.CustomerRecord, error)
	ReadSegments(ctx context.Context) ([]models.SegmentRecord, error)
}

// Loader reads both tables once and keeps the result for the process lifetime.
// A failed load is not cached; the next call retries.
type Loader struct {
	src    Source
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	cached *models.Dataset
}

func NewLoader(src Source, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{src: src, logger: logger, now: time.Now}
}

// Load returns the cached dataset, reading the source on first use.
func (l *Loader) Load(ctx context.Context) (*models.Dataset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return l.cached, nil
	}

	start := l.now()
	customers, err := l.src.ReadCustomers(ctx)
	if err != nil {
		return nil, loadErr(l.src.Name(), "read", err)
	}
	segments, err := l.src.ReadSegments(ctx)
	if err != nil {
		return nil, loadErr(l.src.Name(), "read", err)
	}
	if err := validateSegments(customers, segments); err != nil {
		return nil, loadErr(l.src.Name(), "validate", err)
	}

	l.cached = &models.Dataset{
		Customers: customers,
		Segments:  segments,
		Source:    l.src.Name(),
		LoadedAt:  start.UTC(),
	}
	l.logger.Info("dataset loaded",
		zap.String("source", l.src.Name()),
		zap.Int("customers", len(customers)),
		zap.Int("segments", len(segments)),
		zap.Duration("elapsed", l.now().Sub(start)))
	return l.cached, nil
}

// validateSegments enforces the closed segment set on both tables.
func validateSegments(customers []models.CustomerRecord, segments []models.SegmentRecord) error {
	for i, c := range customers {
		if c.Segment.Rank() < 0 {
			return errors.Wrapf(ErrUnknownSegment, "customer %q (row %d): %q", c.CustomerID, i, c.Segment)
		}
	}
	for i, s := range segments {
		if s.Segment.Rank() < 0 {
			return errors.Wrapf(ErrUnknownSegment, "segment table row %d: %q", i, s.Segment)
		}
	}
	return nil
}
