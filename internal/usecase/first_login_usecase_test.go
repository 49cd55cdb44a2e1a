package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"app/internal/domain/model"
	"app/internal/repository"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type FlUserRepoMock struct{ mock.Mock }

func (m *FlUserRepoMock) Create(ctx context.Context, user *model.User) error {
	panic("not used in FirstLogin tests")
}

func (m *FlUserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *FlUserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	panic("not used in FirstLogin tests")
}

func (m *FlUserRepoMock) FindByFirstLoginToken(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *FlUserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type FlLinkRepoMock struct{ mock.Mock }

func (m *FlLinkRepoMock) UpsertByToken(ctx context.Context, link model.UserAccessLink) error {
	panic("not used in FirstLogin tests")
}

func (m *FlLinkRepoMock) FindByToken(ctx context.Context, token string) (model.UserAccessLink, error) {
	args := m.Called(ctx, token)
	l, _ := args.Get(0).(model.UserAccessLink)
	return l, args.Error(1)
}

func (m *FlLinkRepoMock) MarkUsed(ctx context.Context, linkID int64, usedAt time.Time) error {
	args := m.Called(ctx, linkID, usedAt)
	return args.Error(0)
}

const flSecret = "test-jwt-secret"

type flFixture struct {
	users *FlUserRepoMock
	links *FlLinkRepoMock
	clock *fixedClock
	uc    *FirstLoginUsecase
}

func newFlFixture() *flFixture {
	f := &flFixture{
		users: new(FlUserRepoMock),
		links: new(FlLinkRepoMock),
		clock: &fixedClock{t: time.Now().UTC().Truncate(time.Second)},
	}
	f.uc = NewFirstLoginUsecase(f.users, f.links, &plainHasher{}, f.clock, flSecret)
	return f
}

func (f *flFixture) liveUser(token string) *model.User {
	expires := f.clock.t.Add(24 * time.Hour)
	return &model.User{
		ID:                       9,
		Email:                    "yamada@example.com",
		Role:                     model.RoleUser,
		PasswordSet:              false,
		FirstLoginToken:          &token,
		FirstLoginTokenExpiresAt: &expires,
		IsActive:                 true,
	}
}

// =====================
// Validate
// =====================

func TestFirstLogin_Validate_EmptyToken(t *testing.T) {
	f := newFlFixture()

	_, err := f.uc.Validate(context.Background(), "")

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

func TestFirstLogin_Validate_UnknownToken(t *testing.T) {
	f := newFlFixture()

	f.users.On("FindByFirstLoginToken", mock.Anything, "nope").Return(nil, nil)

	_, err := f.uc.Validate(context.Background(), "nope")

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestFirstLogin_Validate_PasswordAlreadySet(t *testing.T) {
	f := newFlFixture()

	user := f.liveUser("tok-1")
	user.PasswordSet = true
	f.users.On("FindByFirstLoginToken", mock.Anything, "tok-1").Return(user, nil)

	_, err := f.uc.Validate(context.Background(), "tok-1")

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusGone, he.Status)
}

func TestFirstLogin_Validate_ConsumedToken(t *testing.T) {
	f := newFlFixture()

	user := f.liveUser("tok-1")
	consumed := f.clock.t.Add(-time.Hour)
	user.FirstLoginConsumedAt = &consumed
	f.users.On("FindByFirstLoginToken", mock.Anything, "tok-1").Return(user, nil)

	_, err := f.uc.Validate(context.Background(), "tok-1")

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusGone, he.Status)
}

func TestFirstLogin_Validate_ExpiredToken(t *testing.T) {
	f := newFlFixture()

	user := f.liveUser("tok-1")
	expired := f.clock.t.Add(-time.Minute)
	user.FirstLoginTokenExpiresAt = &expired
	f.users.On("FindByFirstLoginToken", mock.Anything, "tok-1").Return(user, nil)

	_, err := f.uc.Validate(context.Background(), "tok-1")

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusGone, he.Status)
}

func TestFirstLogin_Validate_Success(t *testing.T) {
	f := newFlFixture()

	f.users.On("FindByFirstLoginToken", mock.Anything, "tok-1").Return(f.liveUser("tok-1"), nil)

	out, err := f.uc.Validate(context.Background(), "tok-1")
	assert.NoError(t, err)
	assert.Equal(t, "y***@example.com", out.MaskedEmail)
}

// =====================
// Complete
// =====================

func TestFirstLogin_Complete_ShortPassword(t *testing.T) {
	f := newFlFixture()

	_, err := f.uc.Complete(context.Background(), "tok-1", "short")

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

func TestFirstLogin_Complete_Success(t *testing.T) {
	f := newFlFixture()

	f.users.On("FindByFirstLoginToken", mock.Anything, "tok-1").Return(f.liveUser("tok-1"), nil)

	var savedUser model.User
	f.users.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		savedUser = *args.Get(1).(*model.User)
	}).Return(nil)

	f.links.On("FindByToken", mock.Anything, "tok-1").Return(model.UserAccessLink{ID: 3, Token: "tok-1"}, nil)
	f.links.On("MarkUsed", mock.Anything, int64(3), f.clock.t).Return(nil)

	out, err := f.uc.Complete(context.Background(), "tok-1", "correct-horse")
	assert.NoError(t, err)

	//トークンは消費され、パスワードが設定済みになる
	assert.True(t, savedUser.PasswordSet)
	assert.Nil(t, savedUser.FirstLoginToken)
	assert.Nil(t, savedUser.FirstLoginTokenExpiresAt)
	assert.NotNil(t, savedUser.FirstLoginConsumedAt)
	assert.Equal(t, "hashed:correct-horse", savedUser.PasswordHash)

	//発行されたJWTが検証できる
	token, parseErr := jwt.Parse(out.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(flSecret), nil
	})
	assert.NoError(t, parseErr)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(9), claims["sub"])
	assert.Equal(t, "USER", claims["role"])
}

func TestFirstLogin_Complete_SecondUseGone(t *testing.T) {
	f := newFlFixture()

	user := f.liveUser("tok-1")
	consumed := f.clock.t.Add(-time.Minute)
	user.FirstLoginConsumedAt = &consumed
	f.users.On("FindByFirstLoginToken", mock.Anything, "tok-1").Return(user, nil)

	_, err := f.uc.Complete(context.Background(), "tok-1", "correct-horse")

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusGone, he.Status)
	f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestFirstLogin_Complete_LinkRowMissingIsFine(t *testing.T) {
	f := newFlFixture()

	f.users.On("FindByFirstLoginToken", mock.Anything, "tok-1").Return(f.liveUser("tok-1"), nil)
	f.users.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.links.On("FindByToken", mock.Anything, "tok-1").Return(model.UserAccessLink{}, repository.ErrNotFound)

	_, err := f.uc.Complete(context.Background(), "tok-1", "correct-horse")
	assert.NoError(t, err)
}

// =====================
// maskEmail
// =====================

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "y***@example.com", maskEmail("yamada@example.com"))
	assert.Equal(t, "*@example.com", maskEmail("a@example.com"))
	assert.Equal(t, "***", maskEmail("no-at-sign"))
}
