package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/taxlab/ktax/internal/domain"
)

// CSVFormatter writes one summary row per entry
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

var csvHeader = []string{
	"ID", "Category", "TaxYear", "TaxableAmount", "NationalTax", "LocalTax", "TotalTax",
	"MarginalRate", "EffectiveRate", "AdditionalPayment", "Refund", "Warnings", "Error",
}

func (c CSVFormatter) Format(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.Write(csvRow(e)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvRow(e Entry) []string {
	if e.Result == nil {
		row := make([]string, len(csvHeader))
		row[0], row[1], row[len(row)-1] = e.ID, string(e.Category), e.Error
		return row
	}
	o := e.Result.Base()
	marginal, effective := Rates(e.Result)
	additional, refund := Settlement(e.Result)
	return []string{
		e.ID,
		string(o.Category),
		strconv.Itoa(o.TaxYear),
		amount(o.TaxableAmount),
		amount(o.NationalTax),
		amount(o.LocalTax),
		amount(o.TotalTax),
		marginal.String(),
		effective.String(),
		amount(additional),
		amount(refund),
		strconv.Itoa(len(o.Warnings)),
		"",
	}
}

func amount(w domain.Won) string {
	return strconv.FormatInt(int64(w), 10)
}
