// Package ingest turns a CBR daily rates feed into a validated model.Table.
//
// A malformed root or as-of date rejects the whole feed. Every currency
// record is validated on its own: a broken record is logged, counted and
// skipped, the rest of the feed is still loaded.
package ingest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kylycht/currconv/model"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// Element and attribute names of the feed.
const (
	RootElement     = "ValCurs"
	DateAttribute   = "Date"
	CurrencyElement = "Valute"
	CodeElement     = "CharCode"
	NameElement     = "Name"
	AmountElement   = "Nominal"
	LotCostElement  = "Value"
	UnitCostElement = "VunitRate"
)

type document struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []node     `xml:",any"`
}

type node struct {
	XMLName xml.Name
	Fields  []field `xml:",any"`
}

type field struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// lookup returns the trimmed text of the first child named name.
func (n node) lookup(name string) (string, bool) {
	for _, f := range n.Fields {
		if f.XMLName.Local == name {
			return strings.TrimSpace(f.Value), true
		}
	}
	return "", false
}

// Feed is a decoded feed whose root and as-of date are already validated.
type Feed struct {
	Date  time.Time // as-of date from the root attribute
	nodes []node
}

// Len returns the number of child records in the feed.
func (f *Feed) Len() int {
	return len(f.nodes)
}

// Decode reads the XML feed and validates its root element and as-of date.
// Any failure here is fatal for the whole feed and wraps model.ErrSchema.
func Decode(r io.Reader) (*Feed, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: feed has no root element", model.ErrSchema)
		}
		return nil, fmt.Errorf("%w: malformed feed: %v", model.ErrSchema, err)
	}

	if doc.XMLName.Local != RootElement {
		return nil, fmt.Errorf("%w: root element <%s> not found, got <%s>", model.ErrSchema, RootElement, doc.XMLName.Local)
	}

	raw, ok := rootAttr(doc, DateAttribute)
	if !ok {
		return nil, fmt.Errorf("%w: <%s> has no %q attribute", model.ErrSchema, RootElement, DateAttribute)
	}

	date, err := model.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: <%s> attribute %q: %w", model.ErrSchema, RootElement, DateAttribute, err)
	}

	return &Feed{Date: date, nodes: doc.Nodes}, nil
}

func rootAttr(doc document, name string) (string, bool) {
	for _, a := range doc.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Records validates every child record independently.
// The result slice has one entry per child, in document order.
func (f *Feed) Records() []Result {
	results := make([]Result, 0, len(f.nodes))
	for i, n := range f.nodes {
		results = append(results, parseRecord(i, n))
	}
	return results
}

func parseRecord(index int, n node) Result {
	fail := func(code, field string, err error) Result {
		return Result{Index: index, Err: &RecordError{Index: index, Code: code, Field: field, Err: err}}
	}

	if n.XMLName.Local != CurrencyElement {
		return fail("", n.XMLName.Local, fmt.Errorf("%w: unexpected element <%s>, want <%s>",
			model.ErrSchema, n.XMLName.Local, CurrencyElement))
	}

	texts := make(map[string]string, 5)
	for _, name := range []string{CodeElement, NameElement, AmountElement, LotCostElement, UnitCostElement} {
		text, ok := n.lookup(name)
		if !ok {
			return fail(texts[CodeElement], name, fmt.Errorf("%w: element <%s> not found", model.ErrSchema, name))
		}
		texts[name] = text
	}
	code := texts[CodeElement]

	amount, err := strconv.Atoi(texts[AmountElement])
	if err != nil {
		return fail(code, AmountElement, fmt.Errorf("%w: %q is not an integer", model.ErrParse, texts[AmountElement]))
	}

	lotCost, err := model.ParseDecimal(texts[LotCostElement])
	if err != nil {
		return fail(code, LotCostElement, err)
	}

	unitCost, err := model.ParseDecimal(texts[UnitCostElement])
	if err != nil {
		return fail(code, UnitCostElement, err)
	}

	currency, err := model.NewCurrency(code, texts[NameElement], amount, lotCost, unitCost)
	if err != nil {
		return fail(code, "", err)
	}

	return Result{Index: index, Currency: currency}
}

// Report summarizes an ingestion.
type Report struct {
	Loaded  int     // records added to the table
	Skipped int     // records rejected
	Errors  []error // one *RecordError per skipped record
}

// Build creates a table for the feed date and adds every valid record.
// Invalid records are logged and counted in the report.
func Build(f *Feed) (*model.Table, Report) {
	table := model.NewTable(f.Date)
	report := Report{}

	for _, res := range f.Records() {
		if res.Err != nil {
			log.Warn().Err(res.Err).Int("index", res.Index).Msg("skipping currency record")
			report.Skipped++
			report.Errors = append(report.Errors, res.Err)
			continue
		}

		if err := table.Add(res.Currency); err != nil {
			log.Warn().Err(err).Int("index", res.Index).Msg("skipping currency record")
			report.Skipped++
			report.Errors = append(report.Errors, &RecordError{Index: res.Index, Code: res.Currency.Code(), Err: err})
			continue
		}
		report.Loaded++
	}

	log.Debug().
		Int("loaded", report.Loaded).
		Int("skipped", report.Skipped).
		Int("total", table.Len()).
		Str("date", f.Date.Format(model.DateFormat)).
		Msg("rates ingested")

	return table, report
}

// Parse decodes the feed and builds a table from it.
func Parse(r io.Reader) (*model.Table, Report, error) {
	feed, err := Decode(r)
	if err != nil {
		return nil, Report{}, err
	}

	table, report := Build(feed)
	return table, report, nil
}
