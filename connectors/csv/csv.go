package csv

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"pr-dashboard/domain/pr"
)

// Parse converts CSV text into records. The first line holds the headers;
// fields are split on commas with no quoting support. A row shorter than the
// header gets "" for the missing trailing columns, extra fields are ignored.
func Parse(text string) []pr.Record {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	headers := trimAll(strings.Split(lines[0], ","))

	res := make([]pr.Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		res = append(res, zip(headers, strings.Split(line, ",")))
	}
	return res
}

// ParseQuoted reads RFC 4180 CSV, so quoted fields may contain commas and
// newlines. Blank lines are skipped by the reader.
func ParseQuoted(text string) ([]pr.Record, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	head, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []pr.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	headers := trimAll(head)

	res := []pr.Record{}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		res = append(res, zip(headers, rec))
	}
	return res, nil
}

func zip(headers, values []string) pr.Record {
	row := make(pr.Record, len(headers))
	for i, h := range headers {
		if i < len(values) {
			row[h] = strings.TrimSpace(values[i])
		} else {
			row[h] = ""
		}
	}
	return row
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
