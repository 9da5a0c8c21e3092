package registration

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

const (
	ColorSuccess = "green"
	ColorFailure = "red"

	SuccessText = "✅ Registro exitoso"

	failurePrefix    = "❌ Error: "
	messageSeparator = " | "
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FieldError is one entry of an error response body.
type FieldError struct {
	Key     string
	Message string
}

// Outcome is the classification of a single registration response.
type Outcome struct {
	Success    bool
	StatusCode int
	RequestID  string
	Errors     []FieldError // enumeration order; empty on success
}

// Messages returns the error messages in display order.
func (o *Outcome) Messages() []string {
	msgs := make([]string, 0, len(o.Errors))
	for _, e := range o.Errors {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// Status is what the user sees after a submission.
type Status struct {
	Color string
	Text  string
}

// Render maps an outcome to its display state.
func Render(o *Outcome) Status {
	if o.Success {
		return Status{Color: ColorSuccess, Text: SuccessText}
	}
	return Status{
		Color: ColorFailure,
		Text:  failurePrefix + strings.Join(o.Messages(), messageSeparator),
	}
}

// ParseErrorBody reads a JSON object of key to message in the order a
// browser enumerates it: array-index keys ascending, then the remaining
// keys in body order. A repeated key keeps its first position and its
// last value. Anything other than a single object is rejected with
// ErrMalformedErrorBody.
func ParseErrorBody(body []byte) ([]FieldError, error) {
	iter := jsoniter.ParseBytes(json, body)
	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedErrorBody)
	}

	var fieldErrors []FieldError
	position := make(map[string]int)
	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		msg := readMessage(it)
		if it.Error != nil {
			return false
		}
		if i, ok := position[key]; ok {
			fieldErrors[i].Message = msg
			return true
		}
		position[key] = len(fieldErrors)
		fieldErrors = append(fieldErrors, FieldError{Key: key, Message: msg})
		return true
	})
	if iter.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedErrorBody, iter.Error)
	}

	// Only whitespace may follow the object.
	if iter.WhatIsNext() != jsoniter.InvalidValue || !errors.Is(iter.Error, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedErrorBody)
	}

	sort.SliceStable(fieldErrors, func(i, j int) bool {
		a, aIndex := arrayIndex(fieldErrors[i].Key)
		b, bIndex := arrayIndex(fieldErrors[j].Key)
		if aIndex && bIndex {
			return a < b
		}
		return aIndex && !bIndex
	})
	return fieldErrors, nil
}

// arrayIndex reports whether key is a canonical array index
// ("0".."4294967294", no leading zeros).
func arrayIndex(key string) (uint64, bool) {
	if key == "" || len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	for _, c := range key {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil || n > math.MaxUint32-1 {
		return 0, false
	}
	return n, true
}

// readMessage renders one value the way a browser stringifies it when
// joining: arrays are comma joined, null is empty and numbers use the
// shortest JS form. Nested objects render as their JSON text rather than
// "[object Object]" so the user still sees the server's detail.
func readMessage(it *jsoniter.Iterator) string {
	switch it.WhatIsNext() {
	case jsoniter.StringValue:
		return it.ReadString()
	case jsoniter.NilValue:
		it.ReadNil()
		return ""
	case jsoniter.NumberValue:
		return formatNumber(string(it.ReadNumber()))
	case jsoniter.ArrayValue:
		var parts []string
		it.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			parts = append(parts, readMessage(it))
			return it.Error == nil
		})
		return strings.Join(parts, ",")
	default:
		return string(it.SkipAndReturnBytes())
	}
}

// formatNumber prints a JSON number as JavaScript's Number#toString does.
func formatNumber(literal string) string {
	f, err := strconv.ParseFloat(literal, 64)
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case err != nil:
		return literal
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// Go pads the exponent to two digits and JS does not: 1e-07 vs 1e-7.
	out := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(out, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
