// Package account бизнес-логика аккаунтов: регистрация с подтверждением
// по коду из письма, вход, сброс пароля, изменение и удаление профиля.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/tutoring-platform/internal/config"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/otp"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/password"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
	"github.com/magabrotheeeer/tutoring-platform/internal/objectstore"
)

// AccountRepository описывает контракт хранилища аккаунтов.
type AccountRepository interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	SetCode(ctx context.Context, accountID string, code models.OneTimeCode) error
	ConsumeSignupCode(ctx context.Context, accountID, code string) error
	ConsumeResetCode(ctx context.Context, accountID, code, passwordHash string) error
	UpdateProfile(ctx context.Context, a *models.Account) error
	DeleteAccount(ctx context.Context, id string) (string, error)
}

// AssetStore хранилище изображений профиля.
type AssetStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (objectstore.Object, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(rawURL string) (string, bool)
}

// MailQueue очередь писем.
type MailQueue interface {
	Enqueue(ctx context.Context, job models.MailJob) error
}

// CleanupScheduler отложенное удаление неподтверждённых аккаунтов.
type CleanupScheduler interface {
	Schedule(email string)
	Cancel(email string)
}

// Image загруженный файл изображения.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SignupInput данные регистрации.
type SignupInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	ClassLevel int
	Subjects   []string
	Image      *Image
}

// ProfileUpdate изменяемые поля профиля. Пустые поля не меняются.
type ProfileUpdate struct {
	FirstName  string
	LastName   string
	ClassLevel int
	Subjects   []string
	Image      *Image
}

// Service сервис аккаунтов.
type Service struct {
	log     *slog.Logger
	repo    AccountRepository
	assets  AssetStore
	mail    MailQueue
	cleanup CleanupScheduler
	tokens  jwt.Maker
	cfg     config.Accounts
	now     func() time.Time
}

// New создаёт сервис аккаунтов.
func New(log *slog.Logger, repo AccountRepository, assets AssetStore, mail MailQueue,
	cleanup CleanupScheduler, tokens jwt.Maker, cfg config.Accounts) *Service {
	return &Service{
		log:     log,
		repo:    repo,
		assets:  assets,
		mail:    mail,
		cleanup: cleanup,
		tokens:  tokens,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Signup создаёт неподтверждённый аккаунт, отправляет код подтверждения
// и взводит таймер удаления на случай, если код так и не введут.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.Account, error) {
	const op = "account.Signup"
	log := s.log.With(slog.String("op", op))

	email := models.NormalizeEmail(in.Email)
	_, err := s.repo.GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s: %w", op, models.ErrAccountExists)
	case !errors.Is(err, models.ErrAccountNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	code, err := s.issueCode(models.PurposeSignup)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		ClassLevel:   in.ClassLevel,
		Subjects:     in.Subjects,
		State:        models.Unverified,
		Code:         &code,
		Subscription: models.Subscription{
			DueAmount: models.DueAmount(in.ClassLevel, len(in.Subjects)),
			State:     models.SubscriptionInactive,
		},
	}

	if in.Image != nil {
		obj, err := s.uploadImage(ctx, a.ID, in.Image)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.ImageURL = obj.URL
	}

	if err = s.repo.CreateAccount(ctx, a); err != nil {
		s.deleteImage(ctx, log, a.ImageURL)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.cleanup.Schedule(a.Email)

	// аккаунт без письма всё равно будет удалён по таймеру
	if err = s.sendCode(ctx, a, code); err != nil {
		log.Error("failed to enqueue signup code", sl.Err(err), slog.String("account_id", a.ID))
	}
	return a, nil
}

// VerifySignup подтверждает аккаунт кодом из письма.
func (s *Service) VerifySignup(ctx context.Context, email, code string) error {
	const op = "account.VerifySignup"
	a, err := s.repo.GetAccountByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	// у подтверждённого аккаунта кода нет, повтор падает как неверный код
	if err = s.checkCode(a, models.PurposeSignup, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = a.Verify(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.ConsumeSignupCode(ctx, a.ID, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.cleanup.Cancel(a.Email)
	return nil
}

// Login проверяет пароль и выпускает токен доступа.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, *models.Account, error) {
	const op = "account.Login"
	a, err := s.repo.GetAccountByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(a.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	token, err := s.tokens.GenerateToken(a.ID)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, a, nil
}

// ForgotPassword выдаёт код сброса пароля и ставит письмо в очередь.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	const op = "account.ForgotPassword"
	a, err := s.repo.GetAccountByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	code, err := s.issueCode(models.PurposeReset)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.SetCode(ctx, a.ID, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.sendCode(ctx, a, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetPassword гасит код сброса и заменяет пароль.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	const op = "account.ResetPassword"
	a, err := s.repo.GetAccountByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.checkCode(a, models.PurposeReset, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	hash, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.ConsumeResetCode(ctx, a.ID, code, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateProfile меняет профиль и пересчитывает стоимость подписки.
// Старое изображение удаляется после успешного сохранения нового.
func (s *Service) UpdateProfile(ctx context.Context, accountID string, upd ProfileUpdate) (*models.Account, error) {
	const op = "account.UpdateProfile"
	log := s.log.With(slog.String("op", op), slog.String("account_id", accountID))

	a, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if v := strings.TrimSpace(upd.FirstName); v != "" {
		a.FirstName = v
	}
	if v := strings.TrimSpace(upd.LastName); v != "" {
		a.LastName = v
	}
	if upd.ClassLevel != 0 {
		a.ClassLevel = upd.ClassLevel
	}
	if len(upd.Subjects) > 0 {
		a.Subjects = upd.Subjects
	}
	a.Subscription.DueAmount = models.DueAmount(a.ClassLevel, len(a.Subjects))

	oldImage := a.ImageURL
	if upd.Image != nil {
		obj, err := s.uploadImage(ctx, a.ID, upd.Image)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.ImageURL = obj.URL
	}

	if err = s.repo.UpdateProfile(ctx, a); err != nil {
		if a.ImageURL != oldImage {
			s.deleteImage(ctx, log, a.ImageURL)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if a.ImageURL != oldImage {
		s.deleteImage(ctx, log, oldImage)
	}
	return a, nil
}

// SubscriptionActive сообщает, активна ли подписка аккаунта.
func (s *Service) SubscriptionActive(ctx context.Context, accountID string) (bool, error) {
	const op = "account.SubscriptionActive"
	a, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return a.Subscription.Active(), nil
}

// DeleteAccount удаляет аккаунт вместе с историей оплат и изображением.
func (s *Service) DeleteAccount(ctx context.Context, accountID string) error {
	const op = "account.DeleteAccount"
	imageURL, err := s.repo.DeleteAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.deleteImage(ctx, s.log.With(slog.String("op", op), slog.String("account_id", accountID)), imageURL)
	return nil
}

func (s *Service) issueCode(purpose models.CodePurpose) (models.OneTimeCode, error) {
	code, err := otp.Generate()
	if err != nil {
		return models.OneTimeCode{}, err
	}
	window := s.cfg.SignupCodeTTL
	if purpose == models.PurposeReset {
		window = s.cfg.ResetCodeTTL
	}
	return models.OneTimeCode{
		Code:      code,
		ExpiresAt: s.now().Add(window),
		Purpose:   purpose,
	}, nil
}

// checkCode сверяет код до условного UPDATE, чтобы отличить истёкший код от неверного.
func (s *Service) checkCode(a *models.Account, purpose models.CodePurpose, code string) error {
	if a.Code == nil || a.Code.Purpose != purpose || a.Code.Code != code {
		return models.ErrInvalidCode
	}
	if a.Code.Expired(s.now()) {
		return models.ErrCodeExpired
	}
	return nil
}

func (s *Service) sendCode(ctx context.Context, a *models.Account, code models.OneTimeCode) error {
	kind := models.MailSignupCode
	window := s.cfg.SignupCodeTTL
	if code.Purpose == models.PurposeReset {
		kind = models.MailResetCode
		window = s.cfg.ResetCodeTTL
	}
	return s.mail.Enqueue(ctx, models.MailJob{
		Kind:         kind,
		Email:        a.Email,
		FirstName:    a.FirstName,
		Code:         code.Code,
		ValidMinutes: int(window / time.Minute),
	})
}

func (s *Service) uploadImage(ctx context.Context, accountID string, img *Image) (objectstore.Object, error) {
	key := fmt.Sprintf("%s/%s%s", accountID, uuid.NewString(), strings.ToLower(path.Ext(img.Filename)))
	return s.assets.Upload(ctx, key, img.ContentType, img.Data)
}

func (s *Service) deleteImage(ctx context.Context, log *slog.Logger, imageURL string) {
	if imageURL == "" {
		return
	}
	key, ok := s.assets.KeyFromURL(imageURL)
	if !ok {
		return
	}
	if err := s.assets.Delete(ctx, key); err != nil {
		log.Warn("failed to delete profile image", sl.Err(err), slog.String("key", key))
	}
}
