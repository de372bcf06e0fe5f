package models

import "time"

// Gender — пол в анкете; хранится строкой.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Genders возвращает допустимые значения в каноническом порядке.
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderOther}
}

// Valid сообщает, является ли g допустимым значением.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

// Profile — анкета пользователя.
// Avatar — ключ объекта в бакете; AvatarURL вычисляется при выдаче и не хранится.
type Profile struct {
	ID          int64
	UserID      int64
	FirstName   string
	LastName    string
	Gender      Gender
	DateOfBirth time.Time
	Info        string
	Avatar      string
	AvatarURL   string
	CreatedAt   time.Time
}
