package schemas

import "github.com/pribylovaa/profiles-service/internal/models"

// ProfileResponse — тело ответа 201; Avatar — разрешённая ссылка, не ключ.
type ProfileResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	Info        string `json:"info"`
	Avatar      string `json:"avatar"`
}

func ProfileResponseFromModel(p *models.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Gender:      string(p.Gender),
		DateOfBirth: p.DateOfBirth.Format(DateLayout),
		Info:        p.Info,
		Avatar:      p.AvatarURL,
	}
}
