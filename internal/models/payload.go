package models

import (
	"bytes"
	"encoding/json"
)

// Field хранит сырое JSON-значение поля и признак его присутствия в запросе.
type Field struct {
	Present bool
	Raw     json.RawMessage
}

// UnmarshalJSON вызывается только для ключей, присутствующих в объекте, включая null.
func (f *Field) UnmarshalJSON(data []byte) error {
	f.Present = true
	f.Raw = append(f.Raw[:0], data...)
	return nil
}

// MarshalJSON возвращает исходное значение.
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.Present || len(f.Raw) == 0 {
		return []byte("null"), nil
	}
	return f.Raw, nil
}

// IsNull сообщает, что поле передано как null.
func (f Field) IsNull() bool {
	return f.Present && bytes.Equal(bytes.TrimSpace(f.Raw), []byte("null"))
}

// Payload описывает тело запроса на создание или изменение позиции.
// Неизвестные ключи игнорируются.
type Payload struct {
	Name        Field `json:"name" swaggertype:"string" example:"Sample Item"`
	Description Field `json:"description" swaggertype:"string" example:"This is a sample item"`
	Category    Field `json:"category" swaggertype:"string" example:"Sample Category"`
	Price       Field `json:"price" swaggertype:"number" example:"19.99"`
	Quantity    Field `json:"quantity" swaggertype:"integer" example:"10"`
}

// NewPayload собирает Payload из значений Go, удобно для сидов и тестов.
func NewPayload(values map[string]any) (Payload, error) {
	var p Payload
	data, err := json.Marshal(values)
	if err != nil {
		return p, err
	}
	err = json.Unmarshal(data, &p)
	return p, err
}
