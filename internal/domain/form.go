package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/transferdesk/platform/internal/dates"
)

// formFields decodes the loosely typed values browser forms submit: numbers
// may arrive as strings, and an untouched input arrives as "". Values that
// cannot be read are recorded as field errors instead of failing the whole
// body, so validation still reports every field at once.
type formFields struct {
	errs fieldErrors
}

func (f *formFields) invalid(field, message string) {
	if f.errs == nil {
		f.errs = fieldErrors{}
	}
	f.errs.add(field, message)
}

func (f *formFields) number(raw json.RawMessage, field, message string) *float64 {
	v, ok := parseFormNumber(raw)
	if !ok {
		f.invalid(field, message)
		return nil
	}
	return v
}

func (f *formFields) integer(raw json.RawMessage, field, message string) *int {
	v, ok := parseFormNumber(raw)
	if !ok || (v != nil && *v != math.Trunc(*v)) {
		f.invalid(field, message)
		return nil
	}
	if v == nil {
		return nil
	}
	n := int(max(min(*v, math.MaxInt32), math.MinInt32))
	return &n
}

func (f *formFields) date(raw json.RawMessage, field, message string) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		f.invalid(field, message)
		return time.Time{}
	}
	t, p := dates.Normalize(v)
	if p == dates.Invalid {
		f.invalid(field, message)
	}
	return t
}

// parseFormNumber reads a JSON number or numeric string. Missing, null and
// blank values are absent (nil, true).
func parseFormNumber(raw json.RawMessage) (*float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, true
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, false
		}
		if s = strings.TrimSpace(str); s == "" {
			return nil, true
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

// UnmarshalJSON decodes a players form body. Unreadable age and measurement
// values become field errors reported by ValidatePlayer.
func (in *PlayerInput) UnmarshalJSON(data []byte) error {
	type plain PlayerInput
	var aux struct {
		plain
		Age         json.RawMessage `json:"age"`
		MarketValue json.RawMessage `json:"marketValue"`
		Height      json.RawMessage `json:"height"`
		Weight      json.RawMessage `json:"weight"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*in = PlayerInput(aux.plain)
	var f formFields
	in.Age = f.integer(aux.Age, "age", ageMessage)
	in.MarketValue = f.number(aux.MarketValue, "marketValue", "Market value must be a number")
	in.Height = f.number(aux.Height, "height", "Height must be a positive number")
	in.Weight = f.number(aux.Weight, "weight", "Weight must be a positive number")
	in.malformed = f.errs
	return nil
}

// UnmarshalJSON decodes a teams form body.
func (in *TeamInput) UnmarshalJSON(data []byte) error {
	type plain TeamInput
	var aux struct {
		plain
		Founded json.RawMessage `json:"founded"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*in = TeamInput(aux.plain)
	var f formFields
	in.Founded = f.integer(aux.Founded, "founded", foundedMessage)
	in.malformed = f.errs
	return nil
}

// UnmarshalJSON decodes a transfers form body. The transfer date accepts the
// forms dates.Normalize understands; an empty date is absent.
func (in *TransferInput) UnmarshalJSON(data []byte) error {
	type plain TransferInput
	var aux struct {
		plain
		TransferFee    json.RawMessage `json:"transferFee"`
		TransferDate   json.RawMessage `json:"transferDate"`
		ContractLength json.RawMessage `json:"contractLength"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*in = TransferInput(aux.plain)
	var f formFields
	in.TransferFee = f.number(aux.TransferFee, "transferFee", "Transfer fee must be a number")
	in.TransferDate = f.date(aux.TransferDate, "transferDate", "Transfer date is invalid")
	in.ContractLength = f.number(aux.ContractLength, "contractLength", contractMessage)
	in.malformed = f.errs
	return nil
}
