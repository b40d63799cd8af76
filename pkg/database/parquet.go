package database

import (
	"context"
	"os"
	"strconv"
	"time"

	"clv-dashboard/pkg/models"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const readBatchRows = 64 * 1024

// ParquetSource reads the customer and segment tables from two parquet files.
type ParquetSource struct {
	CustomerPath string
	SegmentPath  string
	Verbose      bool

	mem    memory.Allocator
	logger *zap.Logger
}

func NewParquetSource(customerPath, segmentPath string, verbose bool, logger *zap.Logger) *ParquetSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParquetSource{
		CustomerPath: customerPath,
		SegmentPath:  segmentPath,
		Verbose:      verbose,
		mem:          memory.NewGoAllocator(),
		logger:       logger,
	}
}

func (s *ParquetSource) Name() string { return "parquet:" + s.CustomerPath + "," + s.SegmentPath }

func (s *ParquetSource) ReadCustomers(ctx context.Context) ([]models.CustomerRecord, error) {
	var out []models.CustomerRecord
	err := s.scan(ctx, s.CustomerPath, customerColumns, func(r row) error {
		var (
			c   models.CustomerRecord
			err error
		)
		if c.CustomerID, err = r.text(ColCustomerID); err != nil {
			return err
		}
		if c.LastPurchaseDate, err = r.time(ColLastPurchaseDate); err != nil {
			return err
		}
		for _, f := range []struct {
			col string
			dst *float64
		}{
			{ColRecency, &c.Recency},
			{ColFrequency, &c.Frequency},
			{ColMonetary, &c.Monetary},
			{ColPurchaseRate, &c.PurchaseRate},
			{ColAvgOrderValue, &c.AvgOrderValue},
			{ColCustomerLifetime, &c.CustomerLifetime},
			{ColTotalCLV, &c.TotalCLV},
		} {
			if *f.dst, err = r.number(f.col); err != nil {
				return err
			}
		}
		label, err := r.text(ColSegment)
		if err != nil {
			return err
		}
		c.Segment = models.Segment(label)
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ParquetSource) ReadSegments(ctx context.Context) ([]models.SegmentRecord, error) {
	var out []models.SegmentRecord
	err := s.scan(ctx, s.SegmentPath, segmentColumns, func(r row) error {
		label, err := r.text(ColSegment)
		if err != nil {
			return err
		}
		total, err := r.number(ColTotalCLV)
		if err != nil {
			return err
		}
		out = append(out, models.SegmentRecord{Segment: models.Segment(label), TotalCLV: total})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// scan opens path, checks the required columns and calls fn for every row.
func (s *ParquetSource) scan(ctx context.Context, path string, cols []column, fn func(row) error) error {
	f, err := os.Open(path)
	if err != nil {
		return loadErr(path, "open", err)
	}
	defer f.Close()

	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(s.mem), pqarrow.ArrowReadProperties{}, s.mem)
	if err != nil {
		return loadErr(path, "read", errors.Wrap(err, "parquet"))
	}
	defer tbl.Release()

	index, err := resolveColumns(tbl.Schema(), cols)
	if err != nil {
		return loadErr(path, "schema", err)
	}

	s.logger.Debug("parquet table opened",
		zap.String("path", path),
		zap.Int64("rows", tbl.NumRows()),
		zap.Int64("columns", tbl.NumCols()))

	bar := newProgress(s.Verbose, int(tbl.NumRows()), path)
	defer bar.Close()

	tr := array.NewTableReader(tbl, readBatchRows)
	defer tr.Release()

	offset := 0
	for tr.Next() {
		rec := tr.Record()
		n := int(rec.NumRows())
		for i := 0; i < n; i++ {
			if err := fn(row{rec: rec, index: index, i: i}); err != nil {
				return loadErr(path, "decode", errors.Wrapf(err, "row %d", offset+i))
			}
		}
		offset += n
		_ = bar.Add(n)
	}
	if err := tr.Err(); err != nil {
		return loadErr(path, "read", err)
	}
	return nil
}

// resolveColumns maps each required column name to its field index, checking its type.
func resolveColumns(schema *arrow.Schema, cols []column) (map[string]int, error) {
	index := make(map[string]int, len(cols))
	for _, c := range cols {
		idx := schema.FieldIndices(c.name)
		if len(idx) == 0 {
			return nil, errors.Wrapf(ErrMissingColumn, "%q", c.name)
		}
		dt := schema.Field(idx[0]).Type
		if !acceptsType(dt, c.kind) {
			return nil, errors.Wrapf(ErrUnsupportedType, "%q is %s, want %s", c.name, dt, c.kind)
		}
		index[c.name] = idx[0]
	}
	return index, nil
}

func acceptsType(dt arrow.DataType, kind columnKind) bool {
	id := dt.ID()
	if id == arrow.DICTIONARY {
		return acceptsType(dt.(*arrow.DictionaryType).ValueType, kind)
	}
	isText := id == arrow.STRING || id == arrow.LARGE_STRING
	isNumber := arrow.IsInteger(id) || arrow.IsFloating(id)
	switch kind {
	case kindID:
		return isText || arrow.IsInteger(id) || arrow.IsFloating(id)
	case kindLabel:
		return isText
	case kindNumber:
		return isNumber
	case kindTime:
		return id == arrow.TIMESTAMP || id == arrow.DATE32 || id == arrow.DATE64
	}
	return false
}

// row is a cursor on one record batch row.
type row struct {
	rec   arrow.Record
	index map[string]int
	i     int
}

func (r row) cell(name string) (arrow.Array, int, error) {
	arr := r.rec.Column(r.index[name])
	if arr.IsNull(r.i) {
		return nil, 0, errors.Wrapf(ErrNullValue, "%q", name)
	}
	if dict, ok := arr.(*array.Dictionary); ok {
		return dict.Dictionary(), dict.GetValueIndex(r.i), nil
	}
	return arr, r.i, nil
}

func (r row) text(name string) (string, error) {
	arr, i, err := r.cell(name)
	if err != nil {
		return "", err
	}
	switch a := arr.(type) {
	case *array.String:
		return a.Value(i), nil
	case *array.LargeString:
		return a.Value(i), nil
	case *array.Float64:
		return strconv.FormatFloat(a.Value(i), 'f', -1, 64), nil
	case *array.Float32:
		return strconv.FormatFloat(float64(a.Value(i)), 'f', -1, 32), nil
	}
	v, err := integerValue(arr, i)
	if err != nil {
		return "", errors.Wrapf(err, "%q", name)
	}
	return strconv.FormatInt(v, 10), nil
}

func (r row) number(name string) (float64, error) {
	arr, i, err := r.cell(name)
	if err != nil {
		return 0, err
	}
	var v float64
	switch a := arr.(type) {
	case *array.Float64:
		v = a.Value(i)
	case *array.Float32:
		v = float64(a.Value(i))
	case *array.Uint64:
		v = float64(a.Value(i))
	default:
		n, err := integerValue(arr, i)
		if err != nil {
			return 0, errors.Wrapf(err, "%q", name)
		}
		v = float64(n)
	}
	return v, checkFinite(name, v)
}

func (r row) time(name string) (time.Time, error) {
	arr, i, err := r.cell(name)
	if err != nil {
		return time.Time{}, err
	}
	switch a := arr.(type) {
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC(), nil
	case *array.Date32:
		return a.Value(i).ToTime().UTC(), nil
	case *array.Date64:
		return a.Value(i).ToTime().UTC(), nil
	}
	return time.Time{}, errors.Wrapf(ErrUnsupportedType, "%q is %s", name, arr.DataType())
}

func integerValue(arr arrow.Array, i int) (int64, error) {
	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(i), nil
	case *array.Int32:
		return int64(a.Value(i)), nil
	case *array.Int16:
		return int64(a.Value(i)), nil
	case *array.Int8:
		return int64(a.Value(i)), nil
	case *array.Uint64:
		return int64(a.Value(i)), nil
	case *array.Uint32:
		return int64(a.Value(i)), nil
	case *array.Uint16:
		return int64(a.Value(i)), nil
	case *array.Uint8:
		return int64(a.Value(i)), nil
	}
	return 0, errors.Wrapf(ErrUnsupportedType, "%s", arr.DataType())
}
