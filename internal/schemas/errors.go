package schemas

import (
	"strings"
)

// Типы ошибок полей.
const (
	ErrTypeValue       = "value_error"
	ErrTypeMissing     = "missing"
	ErrTypeDateParsing = "date_from_datetime_parsing"
	ErrTypeIntParsing  = "int_parsing"
)

// FieldError — ошибка одного поля запроса в формате {type, loc, msg, input}.
// Input — сырое значение (для даты — строка YYYY-MM-DD, для файла — имя файла);
// для отсутствующего поля — null.
type FieldError struct {
	Type  string   `json:"type"`
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Input any      `json:"input"`
}

// ValidationErrors — все ошибки полей одного запроса (порядок — порядок полей).
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, strings.Join(fe.Loc, ".")+": "+fe.Msg)
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Missing — обязательное поле отсутствует в теле запроса.
func Missing(field string) FieldError {
	return FieldError{Type: ErrTypeMissing, Loc: []string{"body", field}, Msg: "Field required", Input: nil}
}

// InvalidPathInt — параметр пути не является целым числом.
func InvalidPathInt(param, raw string) FieldError {
	return FieldError{
		Type:  ErrTypeIntParsing,
		Loc:   []string{"path", param},
		Msg:   "Input should be a valid integer, unable to parse string as an integer",
		Input: raw,
	}
}

// InvalidBody — тело запроса не удалось разобрать как multipart-форму.
func InvalidBody(msg string) FieldError {
	return FieldError{Type: ErrTypeValue, Loc: []string{"body"}, Msg: msg, Input: nil}
}
