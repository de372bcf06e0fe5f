// validation содержит правила проверки полей анкеты.
// Каждое правило принимает одно сырое значение и возвращает nil
// либо *Error с человекочитаемым сообщением.
package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/pribylovaa/profiles-service/internal/config"
	"github.com/pribylovaa/profiles-service/internal/models"
	_ "golang.org/x/image/webp"
)

// Error — нарушение правила; Message уходит клиенту как есть.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Rules — набор правил с порогами из конфигурации.
type Rules struct {
	minBirthYear int
	minAge       int
	maxImageSize int64
	allowedTypes []string

	validate *validator.Validate
	now      func() time.Time
}

// New собирает правила из секций profile и avatar конфигурации.
func New(cfg *config.Config) *Rules {
	return &Rules{
		minBirthYear: cfg.Profile.MinBirthYear,
		minAge:       cfg.Profile.MinAge,
		maxImageSize: cfg.Avatar.MaxSizeBytes,
		allowedTypes: cfg.Avatar.AllowedContentTypes,
		validate:     validator.New(),
		now:          time.Now,
	}
}

// MaxImageSize — верхняя граница размера аватара в байтах.
func (r *Rules) MaxImageSize() int64 { return r.maxImageSize }

// ValidateName: непустое значение из латинских букв.
func (r *Rules) ValidateName(value string) error {
	if strings.TrimSpace(value) == "" {
		return errorf("Name cannot be empty.")
	}

	if err := r.validate.Var(value, "alpha"); err != nil {
		return errorf("%s contains non-english letters", value)
	}

	return nil
}

// ValidateGender: значение из фиксированного набора models.Genders().
func (r *Rules) ValidateGender(value string) error {
	if models.Gender(value).Valid() {
		return nil
	}

	names := make([]string, 0, 3)
	for _, g := range models.Genders() {
		names = append(names, string(g))
	}

	return errorf("Gender must be one of: %s", strings.Join(names, ", "))
}

// ValidateBirthDate: не раньше minBirthYear, не в будущем, возраст не меньше minAge.
// Сравнение идёт по календарным датам в UTC.
func (r *Rules) ValidateBirthDate(d time.Time) error {
	if d.Year() < r.minBirthYear {
		return errorf("Invalid birth date - year must be greater than %d.", r.minBirthYear)
	}

	today := truncateDay(r.now())
	birth := truncateDay(d)

	if birth.After(today) {
		return errorf("Invalid birth date - date cannot be in the future.")
	}

	if r.minAge > 0 && age(birth, today) < r.minAge {
		return errorf("You must be at least %d years old to register.", r.minAge)
	}

	return nil
}

// ValidateImage проверяет размер, тип содержимого и декодируемость изображения.
// Возвращает тип, определённый по содержимому (а не по заголовку клиента).
func (r *Rules) ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errorf("Image file is empty.")
	}

	if int64(len(data)) > r.maxImageSize {
		return "", errorf("Image size exceeds %s", humanSize(r.maxImageSize))
	}

	contentType := mimetype.Detect(data).String()
	if !mimetype.EqualsAny(contentType, r.allowedTypes...) {
		return "", errorf("Unsupported image format: %s. Use one of next: %s",
			contentType, strings.Join(r.allowedTypes, ", "))
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", errorf("Invalid image format")
	}

	return contentType, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// age — полных лет на дату today.
func age(birth, today time.Time) int {
	years := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		years--
	}

	return years
}

func humanSize(n int64) string {
	const mib = 1 << 20
	if n >= mib && n%mib == 0 {
		return fmt.Sprintf("%d MB", n/mib)
	}

	return fmt.Sprintf("%d bytes", n)
}
