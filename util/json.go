package util

import (
	"encoding/json"
)

// ToJson encode v as a compact json string
func ToJson(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FromJson decode a json string into v, which must be a pointer
func FromJson(str string, v interface{}) error {
	return json.Unmarshal([]byte(str), v)
}
