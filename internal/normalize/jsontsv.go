// Package normalize rewrites JSON dataset exports into the tab-separated
// form the tabular loader consumes. The JSON input is an array of flat
// objects; the key order of the first object defines the column order.
package normalize

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// ConvertJSONToTSV reads the JSON document at jsonPath and writes its TSV
// form next to it (the ".json" suffix replaced by ".tsv", or ".tsv" appended
// when the suffix is absent). It returns the TSV path.
//
// Every record must carry exactly the first record's keys in the same order;
// a record that deviates is an error rather than a silently misaligned row.
func ConvertJSONToTSV(jsonPath string) (string, error) {
	in, err := os.Open(jsonPath)
	if err != nil {
		return "", fmt.Errorf("normalize: open %s: %w", jsonPath, err)
	}
	defer in.Close()

	tsvPath := jsonPath + ".tsv"
	if strings.HasSuffix(jsonPath, ".json") {
		tsvPath = strings.TrimSuffix(jsonPath, ".json") + ".tsv"
	}
	out, err := os.Create(tsvPath)
	if err != nil {
		return "", fmt.Errorf("normalize: create %s: %w", tsvPath, err)
	}

	err = writeTSV(in, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}
	return tsvPath, nil
}

// writeTSV streams the JSON array from r and writes TSV lines to w.
func writeTSV(r io.Reader, w io.Writer) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	var header []string
	for i := 0; dec.More(); i++ {
		keys, values, err := decodeFlatObject(dec)
		if err != nil {
			return fmt.Errorf("normalize: record %d: %w", i, err)
		}
		if header == nil {
			header = keys
			if _, err := bw.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
				return err
			}
		} else if !sameKeys(header, keys) {
			return fmt.Errorf("normalize: record %d: keys %v do not match header %v", i, keys, header)
		}
		if _, err := bw.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}

	if err := expectDelim(dec, ']'); err != nil {
		return err
	}
	return bw.Flush()
}

// decodeFlatObject consumes one JSON object from dec, returning its keys in
// document order and its values coerced to text.
func decodeFlatObject(dec *json.Decoder) (keys, values []string, err error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", tok)
		}
		text, err := decodeScalar(dec, key)
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, text)
	}
	// Consume the closing '}'.
	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

// decodeScalar reads one scalar value and coerces it to its text form.
// Arrays are rendered as comma-joined scalar lists (the allele-list case);
// nested objects are rejected.
func decodeScalar(dec *json.Decoder, key string) (string, error) {
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("value for %q: %w", key, err)
	}
	return scalarText(v, key)
}

func scalarText(v any, key string) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			s, err := scalarText(e, key)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("value for %q is not a scalar (%T)", key, v)
	}
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("normalize: parse json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("normalize: expected %q, got %v", want, tok)
	}
	return nil
}

func sameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
