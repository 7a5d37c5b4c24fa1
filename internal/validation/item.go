package validation

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/RoGogDBD/inventory/internal/models"
)

// Сообщения об ошибках полей.
const (
	MsgNameRequired      = "'name' is required"
	MsgNameNotString     = "'name' must be a string"
	MsgPriceRequired     = "'price' is required"
	MsgPriceInvalid      = "'price' must be a valid number"
	MsgPriceNegative     = "'price' must be non-negative"
	MsgQuantityInvalid   = "'quantity' must be a non-negative integer"
	MsgDescriptionString = "'description' must be a string"
	MsgCategoryString    = "'category' must be a string"
	MsgNoFields          = "No valid fields to update"
)

// ValidateCreate проверяет тело запроса на создание.
// Все ошибки накапливаются; при пустом списке возвращаются поля с умолчаниями.
func ValidateCreate(p models.Payload) (models.ItemFields, []string) {
	var (
		out  models.ItemFields
		errs []string
	)

	if p.Name.Present {
		out.Name, errs = checkName(p.Name, errs)
	} else {
		errs = append(errs, MsgNameRequired)
	}

	if p.Price.Present {
		out.Price, errs = checkPrice(p.Price, errs)
	} else {
		errs = append(errs, MsgPriceRequired)
	}

	if p.Quantity.Present {
		out.Quantity, errs = checkQuantity(p.Quantity, errs)
	} else {
		out.Quantity = new(int64)
	}

	if p.Description.Present {
		out.Description, errs = checkText(p.Description, MsgDescriptionString, errs)
	} else {
		out.Description = new(string)
	}

	if p.Category.Present {
		out.Category, errs = checkText(p.Category, MsgCategoryString, errs)
	} else {
		out.Category = new(string)
	}

	if len(errs) > 0 {
		return models.ItemFields{}, errs
	}
	return out, nil
}

// ValidateUpdate проверяет только переданные поля.
func ValidateUpdate(p models.Payload) (models.ItemFields, []string) {
	var (
		out  models.ItemFields
		errs []string
	)

	if p.Name.Present {
		out.Name, errs = checkName(p.Name, errs)
	}
	if p.Price.Present {
		out.Price, errs = checkPrice(p.Price, errs)
	}
	if p.Quantity.Present {
		out.Quantity, errs = checkQuantity(p.Quantity, errs)
	}
	if p.Description.Present {
		out.Description, errs = checkText(p.Description, MsgDescriptionString, errs)
	}
	if p.Category.Present {
		out.Category, errs = checkText(p.Category, MsgCategoryString, errs)
	}

	if len(errs) > 0 {
		return models.ItemFields{}, errs
	}
	if out.Empty() {
		return models.ItemFields{}, []string{MsgNoFields}
	}
	return out, nil
}

func checkName(f models.Field, errs []string) (*string, []string) {
	if f.IsNull() {
		return nil, append(errs, MsgNameRequired)
	}
	s, ok := decodeString(f.Raw)
	if !ok {
		return nil, append(errs, MsgNameNotString)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, append(errs, MsgNameRequired)
	}
	return &s, errs
}

func checkPrice(f models.Field, errs []string) (*float64, []string) {
	v, ok := decodeFloat(f.Raw)
	if !ok {
		return nil, append(errs, MsgPriceInvalid)
	}
	if v < 0 {
		return nil, append(errs, MsgPriceNegative)
	}
	return &v, errs
}

func checkQuantity(f models.Field, errs []string) (*int64, []string) {
	v, ok := decodeInt(f.Raw)
	if !ok || v < 0 {
		return nil, append(errs, MsgQuantityInvalid)
	}
	return &v, errs
}

func checkText(f models.Field, msg string, errs []string) (*string, []string) {
	if f.IsNull() {
		return new(string), errs
	}
	s, ok := decodeString(f.Raw)
	if !ok {
		return nil, append(errs, msg)
	}
	s = strings.TrimSpace(s)
	return &s, errs
}

func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeAny разбирает значение, сохраняя числа как json.Number.
func decodeAny(raw json.RawMessage) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

func decodeFloat(raw json.RawMessage) (float64, bool) {
	v, ok := decodeAny(raw)
	if !ok {
		return 0, false
	}
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func decodeInt(raw json.RawMessage) (int64, bool) {
	v, ok := decodeAny(raw)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		// 5.0 и 1e3 считаются целыми числами в JSON-записи с дробью или экспонентой.
		f, err := t.Float64()
		if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
