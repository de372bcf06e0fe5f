package service

// Тесты сервисного слоя (internal/service/profiles.go).
//
//  Проверяем:
//  - порядок шагов: права -> дубликат -> загрузка -> вставка -> ссылка;
//  - отсутствие загрузки после отказа в правах или найденного дубликата;
//  - маппинг ошибок storage -> service;
//  - детерминированность ключа аватара.

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/profiles-service/internal/config"
	"github.com/pribylovaa/profiles-service/internal/models"
	"github.com/pribylovaa/profiles-service/internal/schemas"
	"github.com/pribylovaa/profiles-service/internal/storage"
	"github.com/pribylovaa/profiles-service/mocks"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newServiceWithMocks(t *testing.T) (*Service, *mocks.MockProfilesStorage, *mocks.MockAvatarsStorage) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mp := mocks.NewMockProfilesStorage(ctrl)
	ma := mocks.NewMockAvatarsStorage(ctrl)

	return New(mp, ma, &config.Config{Auth: config.AuthConfig{AdminGroup: "admin"}}), mp, ma
}

func validRequest() *schemas.ProfileCreate {
	return &schemas.ProfileCreate{
		FirstName:   "alice",
		LastName:    "smith",
		Gender:      models.GenderFemale,
		DateOfBirth: time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC),
		Info:        "about me",
		Avatar:      schemas.AvatarFile{Filename: "me.png", Data: []byte("png"), ContentType: "image/png"},
	}
}

func userIn(id int64, group models.UserGroupName) *models.User {
	return &models.User{ID: id, IsActive: true, Group: &models.UserGroup{Name: group}}
}

func TestAvatarKey(t *testing.T) {
	require.Equal(t, "avatars/5_me.png", AvatarKey(5, "me.png"))
	require.Equal(t, AvatarKey(5, "me.png"), AvatarKey(5, "me.png"))
	require.NotEqual(t, AvatarKey(5, "me.png"), AvatarKey(6, "me.png"))
}

func TestCreateProfile_Owner_OK(t *testing.T) {
	s, mp, ma := newServiceWithMocks(t)
	before := testutil.ToFloat64(profilesCreated.WithLabelValues(resultCreated))

	req := validRequest()
	const key = "avatars/5_me.png"

	gomock.InOrder(
		mp.EXPECT().ProfileByUserID(gomock.Any(), int64(5)).Return(nil, storage.ErrNotFound),
		ma.EXPECT().UploadAvatar(gomock.Any(), key, req.Avatar.Data, "image/png").Return(nil),
		mp.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *models.Profile) (*models.Profile, error) {
				require.Equal(t, int64(5), p.UserID)
				require.Equal(t, "alice", p.FirstName)
				require.Equal(t, "smith", p.LastName)
				require.Equal(t, models.GenderFemale, p.Gender)
				require.Equal(t, key, p.Avatar)
				require.Empty(t, p.AvatarURL)

				out := *p
				out.ID = 11
				out.CreatedAt = time.Now()
				return &out, nil
			}),
		ma.EXPECT().AvatarURL(gomock.Any(), key).Return("http://cdn/"+key, nil),
	)

	got, err := s.CreateProfile(context.Background(), 5, req, userIn(5, models.UserGroupUser))
	require.NoError(t, err)
	require.Equal(t, int64(11), got.ID)
	require.Equal(t, key, got.Avatar)
	require.Equal(t, "http://cdn/avatars/5_me.png", got.AvatarURL)

	require.Equal(t, before+1, testutil.ToFloat64(profilesCreated.WithLabelValues(resultCreated)))
}

func TestCreateProfile_AdminForOtherUser_OK(t *testing.T) {
	s, mp, ma := newServiceWithMocks(t)

	mp.EXPECT().ProfileByUserID(gomock.Any(), int64(7)).Return(nil, storage.ErrNotFound)
	ma.EXPECT().UploadAvatar(gomock.Any(), "avatars/7_me.png", gomock.Any(), gomock.Any()).Return(nil)
	mp.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p *models.Profile) (*models.Profile, error) {
			out := *p
			out.ID = 1
			return &out, nil
		})
	ma.EXPECT().AvatarURL(gomock.Any(), "avatars/7_me.png").Return("u", nil)

	got, err := s.CreateProfile(context.Background(), 7, validRequest(), userIn(1, models.UserGroupAdmin))
	require.NoError(t, err)
	require.Equal(t, int64(7), got.UserID)
}

func TestCreateProfile_PermissionDenied_NoStorageCalls(t *testing.T) {
	s, _, _ := newServiceWithMocks(t)

	for _, caller := range []*models.User{
		userIn(1, models.UserGroupUser),
		userIn(1, models.UserGroupModerator),
		{ID: 1, IsActive: true},
		nil,
	} {
		_, err := s.CreateProfile(context.Background(), 7, validRequest(), caller)
		require.ErrorIs(t, err, ErrPermissionDenied)
	}
}

func TestCreateProfile_ConfiguredAdminGroup(t *testing.T) {
	ctrl := gomock.NewController(t)
	mp := mocks.NewMockProfilesStorage(ctrl)
	ma := mocks.NewMockAvatarsStorage(ctrl)
	s := New(mp, ma, &config.Config{Auth: config.AuthConfig{AdminGroup: "moderator"}})

	mp.EXPECT().ProfileByUserID(gomock.Any(), int64(7)).Return(&models.Profile{ID: 3, UserID: 7}, nil)

	_, err := s.CreateProfile(context.Background(), 7, validRequest(), userIn(1, models.UserGroupModerator))
	require.ErrorIs(t, err, ErrProfileExists)

	_, err = s.CreateProfile(context.Background(), 7, validRequest(), userIn(1, models.UserGroupAdmin))
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCreateProfile_Duplicate_NoUpload(t *testing.T) {
	s, mp, _ := newServiceWithMocks(t)
	before := testutil.ToFloat64(profilesCreated.WithLabelValues(resultDuplicate))

	mp.EXPECT().ProfileByUserID(gomock.Any(), int64(5)).Return(&models.Profile{ID: 1, UserID: 5}, nil)

	_, err := s.CreateProfile(context.Background(), 5, validRequest(), userIn(5, models.UserGroupUser))
	require.ErrorIs(t, err, ErrProfileExists)
	require.Equal(t, before+1, testutil.ToFloat64(profilesCreated.WithLabelValues(resultDuplicate)))
}

func TestCreateProfile_LookupFailure_Internal(t *testing.T) {
	s, mp, _ := newServiceWithMocks(t)

	mp.EXPECT().ProfileByUserID(gomock.Any(), int64(5)).Return(nil, errors.New("db down"))

	_, err := s.CreateProfile(context.Background(), 5, validRequest(), userIn(5, models.UserGroupUser))
	require.ErrorIs(t, err, ErrInternal)
}

func TestCreateProfile_UploadFailure_NoInsert(t *testing.T) {
	s, mp, ma := newServiceWithMocks(t)

	mp.EXPECT().ProfileByUserID(gomock.Any(), int64(5)).Return(nil, storage.ErrNotFound)
	ma.EXPECT().UploadAvatar(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("minio: %w", storage.ErrUpload))

	_, err := s.CreateProfile(context.Background(), 5, validRequest(), userIn(5, models.UserGroupUser))
	require.ErrorIs(t, err, ErrAvatarUpload)
	require.NotErrorIs(t, err, storage.ErrUpload)
}

func TestCreateProfile_InsertErrors(t *testing.T) {
	tests := []struct {
		name    string
		storErr error
		want    error
	}{
		{name: "race_duplicate", storErr: storage.ErrAlreadyExists, want: ErrProfileExists},
		{name: "unknown_user", storErr: storage.ErrNotFound, want: ErrUserNotFound},
		{name: "other", storErr: errors.New("boom"), want: ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mp, ma := newServiceWithMocks(t)

			mp.EXPECT().ProfileByUserID(gomock.Any(), int64(5)).Return(nil, storage.ErrNotFound)
			ma.EXPECT().UploadAvatar(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			mp.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).Return(nil, tt.storErr)

			_, err := s.CreateProfile(context.Background(), 5, validRequest(), userIn(5, models.UserGroupUser))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateProfile_AvatarURLFailure_Internal(t *testing.T) {
	s, mp, ma := newServiceWithMocks(t)

	mp.EXPECT().ProfileByUserID(gomock.Any(), int64(5)).Return(nil, storage.ErrNotFound)
	ma.EXPECT().UploadAvatar(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	mp.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).Return(&models.Profile{ID: 1, UserID: 5, Avatar: "avatars/5_me.png"}, nil)
	ma.EXPECT().AvatarURL(gomock.Any(), "avatars/5_me.png").Return("", errors.New("presign failed"))

	_, err := s.CreateProfile(context.Background(), 5, validRequest(), userIn(5, models.UserGroupUser))
	require.ErrorIs(t, err, ErrInternal)
}

func TestCreateProfile_ContextErrorsKeptInChain(t *testing.T) {
	ctxErrs := []error{context.DeadlineExceeded, context.Canceled}
	stages := []struct {
		name     string
		sentinel error
		setup    func(mp *mocks.MockProfilesStorage, ma *mocks.MockAvatarsStorage, cause error)
	}{
		{
			name:     "lookup",
			sentinel: ErrInternal,
			setup: func(mp *mocks.MockProfilesStorage, _ *mocks.MockAvatarsStorage, cause error) {
				mp.EXPECT().ProfileByUserID(gomock.Any(), int64(5)).Return(nil, cause)
			},
		},
		{
			name:     "upload",
			sentinel: ErrAvatarUpload,
			setup: func(mp *mocks.MockProfilesStorage, ma *mocks.MockAvatarsStorage, cause error) {
				mp.EXPECT().ProfileByUserID(gomock.Any(), int64(5)).Return(nil, storage.ErrNotFound)
				ma.EXPECT().UploadAvatar(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("minio: %w: %w", storage.ErrUpload, cause))
			},
		},
		{
			name:     "insert",
			sentinel: ErrInternal,
			setup: func(mp *mocks.MockProfilesStorage, ma *mocks.MockAvatarsStorage, cause error) {
				mp.EXPECT().ProfileByUserID(gomock.Any(), int64(5)).Return(nil, storage.ErrNotFound)
				ma.EXPECT().UploadAvatar(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				mp.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).Return(nil, cause)
			},
		},
		{
			name:     "avatar_url",
			sentinel: ErrInternal,
			setup: func(mp *mocks.MockProfilesStorage, ma *mocks.MockAvatarsStorage, cause error) {
				mp.EXPECT().ProfileByUserID(gomock.Any(), int64(5)).Return(nil, storage.ErrNotFound)
				ma.EXPECT().UploadAvatar(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				mp.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).
					Return(&models.Profile{ID: 1, UserID: 5, Avatar: "avatars/5_me.png"}, nil)
				ma.EXPECT().AvatarURL(gomock.Any(), "avatars/5_me.png").Return("", cause)
			},
		},
	}

	for _, st := range stages {
		for _, cause := range ctxErrs {
			t.Run(st.name+"/"+cause.Error(), func(t *testing.T) {
				s, mp, ma := newServiceWithMocks(t)
				st.setup(mp, ma, fmt.Errorf("storage: %w", cause))

				_, err := s.CreateProfile(context.Background(), 5, validRequest(), userIn(5, models.UserGroupUser))
				require.ErrorIs(t, err, cause)
				require.NotErrorIs(t, err, st.sentinel)
			})
		}
	}
}
