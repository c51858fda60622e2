package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// StringArray stores a list of strings in one text column as JSON, so the
// same model works on postgres, mysql and sqlite.
type StringArray []string

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("StringArray: unsupported scan type")
	}

	s := strings.TrimSpace(string(data))
	if s == "" {
		*a = nil
		return nil
	}
	if strings.HasPrefix(s, "[") {
		return json.Unmarshal(data, a)
	}

	// A bare value written before the column held JSON.
	*a = StringArray{s}
	return nil
}

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType pins the column to text so Value's JSON round-trips on
// every supported driver.
func (StringArray) GormDataType() string {
	return "text"
}
