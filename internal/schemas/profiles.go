// schemas строит проверенный запрос на создание анкеты из структурированного
// ввода или из multipart-формы. Оба пути прогоняют один упорядоченный список
// правил по полям и собирают все ошибки, а не только первую.
package schemas

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/pribylovaa/profiles-service/internal/models"
	"github.com/pribylovaa/profiles-service/internal/validation"
)

// DateLayout — формат date_of_birth на входе и выходе.
const DateLayout = "2006-01-02"

// Поля формы.
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldGender      = "gender"
	FieldDateOfBirth = "date_of_birth"
	FieldInfo        = "info"
	FieldAvatar      = "avatar"
)

// AvatarFile — загруженный файл целиком в памяти.
// ContentType заполняется по содержимому после проверки.
type AvatarFile struct {
	Filename    string
	Data        []byte
	ContentType string
}

// ProfileCreateInput — сырой структурированный ввод.
type ProfileCreateInput struct {
	FirstName   string
	LastName    string
	Gender      string
	DateOfBirth time.Time
	Info        string
	Avatar      AvatarFile
}

// ProfileCreate — проверенный и нормализованный запрос (имена в нижнем регистре).
type ProfileCreate struct {
	FirstName   string
	LastName    string
	Gender      models.Gender
	DateOfBirth time.Time
	Info        string
	Avatar      AvatarFile
}

// ProfileSchema применяет правила validation.Rules к полям анкеты.
type ProfileSchema struct {
	rules *validation.Rules
}

func NewProfileSchema(rules *validation.Rules) *ProfileSchema {
	return &ProfileSchema{rules: rules}
}

// fieldRule — правило одного поля: сырое значение для ошибки и применение к результату.
type fieldRule struct {
	field string
	input func(in *ProfileCreateInput) any
	apply func(in *ProfileCreateInput, out *ProfileCreate) error
}

func (s *ProfileSchema) fieldRules() []fieldRule {
	return []fieldRule{
		{
			field: FieldFirstName,
			input: func(in *ProfileCreateInput) any { return in.FirstName },
			apply: func(in *ProfileCreateInput, out *ProfileCreate) error {
				if err := s.rules.ValidateName(in.FirstName); err != nil {
					return err
				}
				out.FirstName = strings.ToLower(in.FirstName)
				return nil
			},
		},
		{
			field: FieldLastName,
			input: func(in *ProfileCreateInput) any { return in.LastName },
			apply: func(in *ProfileCreateInput, out *ProfileCreate) error {
				if err := s.rules.ValidateName(in.LastName); err != nil {
					return err
				}
				out.LastName = strings.ToLower(in.LastName)
				return nil
			},
		},
		{
			field: FieldGender,
			input: func(in *ProfileCreateInput) any { return in.Gender },
			apply: func(in *ProfileCreateInput, out *ProfileCreate) error {
				if err := s.rules.ValidateGender(in.Gender); err != nil {
					return err
				}
				out.Gender = models.Gender(in.Gender)
				return nil
			},
		},
		{
			field: FieldDateOfBirth,
			input: func(in *ProfileCreateInput) any { return in.DateOfBirth.Format(DateLayout) },
			apply: func(in *ProfileCreateInput, out *ProfileCreate) error {
				if err := s.rules.ValidateBirthDate(in.DateOfBirth); err != nil {
					return err
				}
				y, m, d := in.DateOfBirth.Date()
				out.DateOfBirth = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
				return nil
			},
		},
		{
			field: FieldInfo,
			input: func(in *ProfileCreateInput) any { return in.Info },
			apply: func(in *ProfileCreateInput, out *ProfileCreate) error {
				if strings.TrimSpace(in.Info) == "" {
					return &validation.Error{Message: "Info field cannot be empty or contain only spaces."}
				}
				out.Info = in.Info
				return nil
			},
		},
		{
			field: FieldAvatar,
			input: func(in *ProfileCreateInput) any { return in.Avatar.Filename },
			apply: func(in *ProfileCreateInput, out *ProfileCreate) error {
				contentType, err := s.rules.ValidateImage(in.Avatar.Data)
				if err != nil {
					return err
				}
				out.Avatar = AvatarFile{
					Filename:    in.Avatar.Filename,
					Data:        in.Avatar.Data,
					ContentType: contentType,
				}
				return nil
			},
		},
	}
}

// Create проверяет структурированный ввод.
// Ошибка — ValidationErrors со всеми нарушениями.
func (s *ProfileSchema) Create(in ProfileCreateInput) (*ProfileCreate, error) {
	return s.build(&in, nil, nil)
}

// CreateFromForm разбирает multipart-форму и проверяет её теми же правилами.
// Отсутствующие и неразбираемые поля дают свои ошибки и не проверяются повторно.
func (s *ProfileSchema) CreateFromForm(form *multipart.Form) (*ProfileCreate, error) {
	var (
		in   ProfileCreateInput
		errs ValidationErrors
		skip = make(map[string]bool)
	)

	text := func(field string, dst *string) {
		v, ok := formValue(form, field)
		if !ok {
			errs = append(errs, Missing(field))
			skip[field] = true
			return
		}
		*dst = v
	}

	text(FieldFirstName, &in.FirstName)
	text(FieldLastName, &in.LastName)
	text(FieldGender, &in.Gender)

	if raw, ok := formValue(form, FieldDateOfBirth); !ok {
		errs = append(errs, Missing(FieldDateOfBirth))
		skip[FieldDateOfBirth] = true
	} else if d, err := time.Parse(DateLayout, strings.TrimSpace(raw)); err != nil {
		errs = append(errs, FieldError{
			Type:  ErrTypeDateParsing,
			Loc:   []string{"body", FieldDateOfBirth},
			Msg:   "Input should be a valid date in YYYY-MM-DD format",
			Input: raw,
		})
		skip[FieldDateOfBirth] = true
	} else {
		in.DateOfBirth = d
	}

	text(FieldInfo, &in.Info)

	if fh := formFile(form, FieldAvatar); fh == nil {
		errs = append(errs, Missing(FieldAvatar))
		skip[FieldAvatar] = true
	} else {
		data, err := readFile(fh, s.rules.MaxImageSize())
		if err != nil {
			errs = append(errs, FieldError{
				Type:  ErrTypeValue,
				Loc:   []string{FieldAvatar},
				Msg:   "Unable to read uploaded file",
				Input: fh.Filename,
			})
			skip[FieldAvatar] = true
		}
		in.Avatar = AvatarFile{Filename: fh.Filename, Data: data}
	}

	return s.build(&in, skip, errs)
}

func (s *ProfileSchema) build(in *ProfileCreateInput, skip map[string]bool, errs ValidationErrors) (*ProfileCreate, error) {
	var out ProfileCreate

	for _, rule := range s.fieldRules() {
		if skip[rule.field] {
			continue
		}

		if err := rule.apply(in, &out); err != nil {
			errs = append(errs, FieldError{
				Type:  ErrTypeValue,
				Loc:   []string{rule.field},
				Msg:   message(err),
				Input: rule.input(in),
			})
		}
	}

	if len(errs) > 0 {
		return nil, sortByField(errs)
	}

	return &out, nil
}

func message(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Message
	}

	return err.Error()
}

// sortByField упорядочивает ошибки по порядку полей формы (стабильно).
func sortByField(errs ValidationErrors) ValidationErrors {
	order := []string{FieldFirstName, FieldLastName, FieldGender, FieldDateOfBirth, FieldInfo, FieldAvatar}

	sorted := make(ValidationErrors, 0, len(errs))
	for _, field := range order {
		for _, fe := range errs {
			if fe.Loc[len(fe.Loc)-1] == field {
				sorted = append(sorted, fe)
			}
		}
	}

	return sorted
}

func formValue(form *multipart.Form, field string) (string, bool) {
	if form == nil {
		return "", false
	}

	vs, ok := form.Value[field]
	if !ok || len(vs) == 0 {
		return "", false
	}

	return vs[0], true
}

func formFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}

	fhs := form.File[field]
	if len(fhs) == 0 {
		return nil
	}

	return fhs[0]
}

// readFile читает не больше limit+1 байт: превышение увидит ValidateImage.
func readFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	const op = "schemas/readFile"

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}
