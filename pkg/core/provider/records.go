package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"stockval/pkg/core/statement"
	"stockval/pkg/core/utils"
)

// Meta keys present on every record. They locate the reporting period
// instead of becoming columns.
const (
	metaTicker = "ticker"
	metaYear   = "yearReport"
	metaLength = "lengthReport"
)

type recordField struct {
	key statement.Key
	val any
}

type parsedRecord struct {
	fields  []recordField
	year    int
	length  int
	hasYear bool
}

// ParseRecords decodes a vendor records payload into a period table.
// Payloads arrive either as a {"data": [...]} envelope or a bare array of
// record objects. Key order in the records defines the column order, which
// matters because the resolver breaks candidate ties by schema position.
// One level of object nesting becomes (category, label) columns, the way
// the price board groups its match/listing/bid_ask sections. Rows sort
// most-recent-first by the yearReport/lengthReport meta fields when those
// are present.
func ParseRecords(data []byte) (*statement.Table, error) {
	raws, err := splitRecords(data)
	if err != nil {
		return nil, err
	}

	table := &statement.Table{}
	colIndex := make(map[statement.Key]int)

	type rowAcc struct {
		rec   *parsedRecord
		cells map[int]any
	}
	var rows []*rowAcc
	anyYear := false

	for _, raw := range raws {
		rec, err := parseRecord(raw)
		if err != nil {
			return nil, err
		}
		acc := &rowAcc{rec: rec, cells: make(map[int]any, len(rec.fields))}
		for _, f := range rec.fields {
			idx, ok := colIndex[f.key]
			if !ok {
				idx = len(table.Columns)
				colIndex[f.key] = idx
				table.Columns = append(table.Columns, f.key)
			}
			acc.cells[idx] = f.val
		}
		if rec.hasYear {
			anyYear = true
		}
		rows = append(rows, acc)
	}

	if anyYear {
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].rec.year != rows[j].rec.year {
				return rows[i].rec.year > rows[j].rec.year
			}
			return rows[i].rec.length > rows[j].rec.length
		})
	}

	for _, acc := range rows {
		cells := make([]any, len(table.Columns))
		for idx, v := range acc.cells {
			cells[idx] = v
		}
		table.Rows = append(table.Rows, statement.Row{Period: periodLabel(acc.rec), Cells: cells})
	}
	return table, nil
}

func splitRecords(data []byte) ([]json.RawMessage, error) {
	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := utils.DecodeLenient(data, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var bare []json.RawMessage
	if err := utils.DecodeLenient(data, &bare); err == nil {
		return bare, nil
	}
	return nil, fmt.Errorf("payload is neither a records envelope nor an array")
}

// parseRecord walks one record's tokens so key order survives decoding.
func parseRecord(raw []byte) (*parsedRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("record is not an object")
	}

	rec := &parsedRecord{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := valTok.(json.Delim); ok {
			switch d {
			case '{':
				if err := parseNested(dec, key, rec); err != nil {
					return nil, err
				}
			case '[':
				if err := skipOpened(dec, d); err != nil {
					return nil, err
				}
			}
			continue
		}
		rec.addFlat(key, valTok)
	}
	_, err = dec.Token() // closing brace
	return rec, err
}

// parseNested consumes an already-opened nested object, turning its scalar
// children into (parent, child) columns. Deeper nesting is skipped.
func parseNested(dec *json.Decoder, parent string, rec *parsedRecord) error {
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected nested key token %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := valTok.(json.Delim); ok {
			if err := skipOpened(dec, d); err != nil {
				return err
			}
			continue
		}
		rec.fields = append(rec.fields, recordField{
			key: statement.Key{Category: parent, Label: key},
			val: valTok,
		})
	}
	_, err := dec.Token() // closing brace
	return err
}

// skipOpened consumes the remainder of a container whose opening delim was
// already read.
func skipOpened(dec *json.Decoder, open json.Delim) error {
	for dec.More() {
		if open == '{' {
			if _, err := dec.Token(); err != nil {
				return err
			}
		}
		if err := skipValue(dec); err != nil {
			return err
		}
	}
	_, err := dec.Token()
	return err
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
		return skipOpened(dec, d)
	}
	return nil
}

func (r *parsedRecord) addFlat(key string, val any) {
	switch key {
	case metaTicker:
		return
	case metaYear:
		if n, ok := asInt(val); ok {
			r.year = n
			r.hasYear = true
		}
		return
	case metaLength:
		if n, ok := asInt(val); ok {
			r.length = n
		}
		return
	}
	r.fields = append(r.fields, recordField{key: statement.Key{Label: key}, val: val})
}

func asInt(val any) (int, bool) {
	switch v := val.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if f, err := v.Float64(); err == nil {
			return int(f), true
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

func periodLabel(rec *parsedRecord) string {
	if !rec.hasYear {
		return ""
	}
	if rec.length >= 1 && rec.length <= 4 {
		return fmt.Sprintf("%d-Q%d", rec.year, rec.length)
	}
	return strconv.Itoa(rec.year)
}
