package img2grid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Views holds the three textual forms of one grid.
type Views struct {
	Raw     string
	Pretty  string
	Escaped string
}

// Render derives every view from g.
func Render(g Grid) Views {
	return Views{
		Raw:     ToRaw(g),
		Pretty:  ToPretty(g),
		Escaped: ToEscaped(g),
	}
}

// ToRaw joins each row's symbols and terminates every row with a newline.
func ToRaw(g Grid) string {
	var sb strings.Builder
	for _, row := range g {
		for _, s := range row {
			sb.WriteRune(rune(s))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseRaw splits text into rows and each row into single character cells.
// Surrounding whitespace is trimmed first and blank lines are dropped.
// Rows are not required to have equal length.
func ParseRaw(text string) Grid {
	text = strings.TrimSpace(text)
	g := Grid{}
	if text == "" {
		return g
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		row := make([]Symbol, 0, utf8.RuneCountInString(line))
		for _, r := range line {
			row = append(row, Symbol(r))
		}
		g = append(g, row)
	}
	return g
}

// ToPretty renders g as a JSON array of arrays indented by two spaces.
func ToPretty(g Grid) string {
	return encodeJSON(g.cells(), "  ")
}

// ToEscaped renders g as compact JSON and then encodes that text once more
// as a JSON string literal, so it can be stored as one scalar value.
func ToEscaped(g Grid) string {
	return encodeJSON(encodeJSON(g.cells(), ""), "")
}

// FromEscaped reverses ToEscaped. The decoded value must be a rectangular
// array of arrays of single character strings.
func FromEscaped(text string) (Grid, error) {
	var literal string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &literal); err != nil {
		return nil, &DecodeError{Reason: "outer layer is not a JSON string", Err: err}
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(literal), &parsed); err != nil {
		return nil, &DecodeError{Reason: "inner layer is not JSON", Err: err}
	}
	rows, ok := parsed.([]interface{})
	if !ok {
		return nil, &DecodeError{Reason: "parsed result is not a 2D array"}
	}

	g := make(Grid, len(rows))
	for y, rowValue := range rows {
		cells, ok := rowValue.([]interface{})
		if !ok {
			return nil, &DecodeError{
				Reason: fmt.Sprintf("row %d is not an array", y)}
		}
		row := make([]Symbol, len(cells))
		for x, cellValue := range cells {
			cell, ok := cellValue.(string)
			if !ok || utf8.RuneCountInString(cell) != 1 {
				return nil, &DecodeError{
					Reason: fmt.Sprintf("cell (%d,%d) is not a single character", x, y)}
			}
			r, _ := utf8.DecodeRuneInString(cell)
			row[x] = Symbol(r)
		}
		g[y] = row
	}
	if err := g.Validate(); err != nil {
		return nil, &DecodeError{Reason: "grid is not rectangular", Err: err}
	}
	return g, nil
}

// cells converts g to the string matrix the JSON forms are built from.
func (g Grid) cells() [][]string {
	out := make([][]string, len(g))
	for y, row := range g {
		out[y] = make([]string, len(row))
		for x, s := range row {
			out[y][x] = s.String()
		}
	}
	return out
}

// encodeJSON marshals v without HTML escaping and without the trailing
// newline json.Encoder appends.
func encodeJSON(v interface{}, indent string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		// Strings and string matrices always encode.
		panic(fmt.Sprintf("img2grid: encoding %T: %v", v, err))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
