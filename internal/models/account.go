// Package models содержит доменные структуры платформы: аккаунт ученика,
// его подписку, видеоматериалы и записи об оплатах, а также явные
// машины состояний подтверждения и подписки.
package models

import (
	"strings"
	"time"
)

// VerificationState состояние подтверждения аккаунта.
type VerificationState string

const (
	// Unverified аккаунт создан, код из письма ещё не введён.
	Unverified VerificationState = "unverified"
	// Verified аккаунт подтверждён.
	Verified VerificationState = "verified"
)

// CodePurpose назначение одноразового кода.
type CodePurpose string

const (
	// PurposeSignup код подтверждения регистрации.
	PurposeSignup CodePurpose = "signup"
	// PurposeReset код сброса пароля.
	PurposeReset CodePurpose = "reset"
)

// OneTimeCode выданный одноразовый код. У аккаунта не больше одного такого кода.
type OneTimeCode struct {
	Code      string
	ExpiresAt time.Time
	Purpose   CodePurpose
}

// Expired сообщает, истёк ли код к моменту now.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Account аккаунт ученика.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	ClassLevel   int
	Subjects     []string
	ImageURL     string
	State        VerificationState
	Code         *OneTimeCode
	CreatedAt    time.Time
	Subscription Subscription
}

// Verify переводит аккаунт в подтверждённое состояние.
func (a *Account) Verify() error {
	if a.State == Verified {
		return ErrAlreadyVerified
	}
	a.State = Verified
	return nil
}

// HasSubject проверяет без учёта регистра, изучает ли ученик предмет.
func (a *Account) HasSubject(subject string) bool {
	for _, s := range a.Subjects {
		if strings.EqualFold(s, subject) {
			return true
		}
	}
	return false
}

// AccountSummary данные аккаунта, которые можно отдавать клиенту.
type AccountSummary struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	FirstName    string              `json:"firstName"`
	LastName     string              `json:"lastName"`
	ClassLevel   int                 `json:"classOp"`
	Subjects     []string            `json:"subjects"`
	Image        string              `json:"image,omitempty"`
	Verified     bool                `json:"isVerified"`
	Subscription SubscriptionSummary `json:"subscription"`
}

// SubscriptionSummary публичное представление подписки.
type SubscriptionSummary struct {
	DueAmount float64    `json:"subAmount"`
	Active    bool       `json:"isActive"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

// Summary возвращает представление аккаунта без пароля и кода.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:         a.ID,
		Email:      a.Email,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		ClassLevel: a.ClassLevel,
		Subjects:   a.Subjects,
		Image:      a.ImageURL,
		Verified:   a.State == Verified,
		Subscription: SubscriptionSummary{
			DueAmount: a.Subscription.DueAmount,
			Active:    a.Subscription.State == SubscriptionActive,
			StartDate: a.Subscription.StartDate,
			EndDate:   a.Subscription.EndDate,
		},
	}
}

// NormalizeEmail приводит адрес к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
