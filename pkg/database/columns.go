package database

import (
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// Column names written by the upstream pipeline.
const (
	ColCustomerID       = "Customer ID"
	ColLastPurchaseDate = "LastPurchaseDate"
	ColRecency          = "Recency"
	ColFrequency        = "Frequency"
	ColMonetary         = "Monetary"
	ColPurchaseRate     = "PurchaseRate"
	ColAvgOrderValue    = "AvgOrderValue"
	ColCustomerLifetime = "CustomerLifetime"
	ColTotalCLV         = "TotalCLV"
	ColSegment          = "Segment"
)

type columnKind int

const (
	kindID     columnKind = iota // text or integer-like
	kindLabel                    // text only
	kindNumber                   // any numeric
	kindTime                     // timestamp or date
)

type column struct {
	name string
	kind columnKind
}

var customerColumns = []column{
	{ColCustomerID, kindID},
	{ColLastPurchaseDate, kindTime},
	{ColRecency, kindNumber},
	{ColFrequency, kindNumber},
	{ColMonetary, kindNumber},
	{ColPurchaseRate, kindNumber},
	{ColAvgOrderValue, kindNumber},
	{ColCustomerLifetime, kindNumber},
	{ColTotalCLV, kindNumber},
	{ColSegment, kindLabel},
}

var segmentColumns = []column{
	{ColSegment, kindLabel},
	{ColTotalCLV, kindNumber},
}

func (k columnKind) String() string {
	switch k {
	case kindID:
		return "identifier"
	case kindLabel:
		return "text"
	case kindNumber:
		return "numeric"
	case kindTime:
		return "date/time"
	}
	return "unknown"
}

// newProgress returns a bar on stderr when verbose, a silent one otherwise.
func newProgress(verbose bool, rows int, desc string) *progressbar.ProgressBar {
	if verbose {
		return progressbar.Default(int64(rows), desc)
	}
	return progressbar.NewOptions(rows, progressbar.OptionSetWriter(io.Discard))
}

// checkFinite rejects NaN and infinities in a measure column.
func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.Wrapf(ErrNonFiniteValue, "%q is %v", name, v)
	}
	return nil
}
