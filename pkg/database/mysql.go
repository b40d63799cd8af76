package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"clv-dashboard/pkg/models"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open accepts a mariadb:// or mysql:// URL, or a native driver DSN.
func Open(dsn string) (*sql.DB, string, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, "", err
	}
	// read-only reporting: one load, few connections
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, mysqlDSN, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pass, _ = u.User.Password()
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("incomplete dsn (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// redactDSN hides the password for logging.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	colon := strings.Index(dsn, ":")
	if at < 0 || colon < 0 || colon > at {
		return dsn
	}
	return dsn[:colon+1] + "***" + dsn[at:]
}

// MySQLSource reads the two tables from MariaDB/MySQL.
type MySQLSource struct {
	db            *sql.DB
	dsn           string
	customerTable string
	segmentTable  string
	verbose       bool
	logger        *zap.Logger
}

func NewMySQLSource(db *sql.DB, dsn, customerTable, segmentTable string, verbose bool, logger *zap.Logger) (*MySQLSource, error) {
	for _, t := range []string{customerTable, segmentTable} {
		if !tableNameRe.MatchString(t) {
			return nil, fmt.Errorf("invalid table name %q", t)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MySQLSource{
		db:            db,
		dsn:           dsn,
		customerTable: customerTable,
		segmentTable:  segmentTable,
		verbose:       verbose,
		logger:        logger,
	}, nil
}

func (s *MySQLSource) Name() string {
	return "mysql:" + redactDSN(s.dsn) + "/" + s.customerTable + "," + s.segmentTable
}

func (s *MySQLSource) ReadCustomers(ctx context.Context) ([]models.CustomerRecord, error) {
	if err := s.checkColumns(ctx, s.customerTable, customerColumns); err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT %s FROM %s", selectList(customerColumns), s.customerTable)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, loadErr(s.customerTable, "read", err)
	}
	defer rows.Close()

	bar := newProgress(s.verbose, -1, s.customerTable)
	defer bar.Close()

	var out []models.CustomerRecord
	for n := 0; rows.Next(); n++ {
		var (
			id      sql.NullString
			last    sql.NullTime
			nums    [7]sql.NullFloat64
			segment sql.NullString
		)
		dest := []any{&id, &last}
		for i := range nums {
			dest = append(dest, &nums[i])
		}
		dest = append(dest, &segment)
		if err := rows.Scan(dest...); err != nil {
			return nil, loadErr(s.customerTable, "decode", errors.Wrapf(err, "row %d", n))
		}

		if !id.Valid || !last.Valid || !segment.Valid {
			return nil, loadErr(s.customerTable, "decode", errors.Wrapf(ErrNullValue, "row %d", n))
		}
		c := models.CustomerRecord{
			CustomerID:       id.String,
			LastPurchaseDate: last.Time.UTC(),
			Segment:          models.Segment(segment.String),
		}
		fields := []*float64{&c.Recency, &c.Frequency, &c.Monetary, &c.PurchaseRate,
			&c.AvgOrderValue, &c.CustomerLifetime, &c.TotalCLV}
		for i, v := range nums {
			if !v.Valid {
				return nil, loadErr(s.customerTable, "decode",
					errors.Wrapf(ErrNullValue, "row %d: %q", n, customerColumns[i+2].name))
			}
			if err := checkFinite(customerColumns[i+2].name, v.Float64); err != nil {
				return nil, loadErr(s.customerTable, "decode", errors.Wrapf(err, "row %d", n))
			}
			*fields[i] = v.Float64
		}
		out = append(out, c)
		_ = bar.Add(1)
	}
	if err := rows.Err(); err != nil {
		return nil, loadErr(s.customerTable, "read", err)
	}
	return out, nil
}

func (s *MySQLSource) ReadSegments(ctx context.Context) ([]models.SegmentRecord, error) {
	if err := s.checkColumns(ctx, s.segmentTable, segmentColumns); err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT %s FROM %s", selectList(segmentColumns), s.segmentTable)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, loadErr(s.segmentTable, "read", err)
	}
	defer rows.Close()

	var out []models.SegmentRecord
	for n := 0; rows.Next(); n++ {
		var (
			segment sql.NullString
			total   sql.NullFloat64
		)
		if err := rows.Scan(&segment, &total); err != nil {
			return nil, loadErr(s.segmentTable, "decode", errors.Wrapf(err, "row %d", n))
		}
		if !segment.Valid || !total.Valid {
			return nil, loadErr(s.segmentTable, "decode", errors.Wrapf(ErrNullValue, "row %d", n))
		}
		if err := checkFinite(ColTotalCLV, total.Float64); err != nil {
			return nil, loadErr(s.segmentTable, "decode", errors.Wrapf(err, "row %d", n))
		}
		out = append(out, models.SegmentRecord{Segment: models.Segment(segment.String), TotalCLV: total.Float64})
	}
	if err := rows.Err(); err != nil {
		return nil, loadErr(s.segmentTable, "read", err)
	}
	return out, nil
}

// checkColumns reads the table header (LIMIT 0) and fails on any missing required column.
func (s *MySQLSource) checkColumns(ctx context.Context, table string, cols []column) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", table))
	if err != nil {
		return loadErr(table, "open", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return loadErr(table, "schema", err)
	}
	if missing := missingColumns(names, cols); len(missing) > 0 {
		return loadErr(table, "schema", errors.Wrapf(ErrMissingColumn, "%s", strings.Join(missing, ", ")))
	}
	s.logger.Debug("table schema checked", zap.String("table", table), zap.Strings("columns", names))
	return nil
}

func missingColumns(have []string, want []column) []string {
	set := make(map[string]bool, len(have))
	for _, h := range have {
		set[h] = true
	}
	var missing []string
	for _, c := range want {
		if !set[c.name] {
			missing = append(missing, c.name)
		}
	}
	return missing
}

func selectList(cols []column) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = "`" + c.name + "`"
	}
	return strings.Join(quoted, ", ")
}
