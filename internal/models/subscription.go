package models

import "time"

// SubscriptionState состояние подписки.
type SubscriptionState string

const (
	// SubscriptionInactive подписка не оплачена или истекла.
	SubscriptionInactive SubscriptionState = "inactive"
	// SubscriptionActive оплаченная подписка.
	SubscriptionActive SubscriptionState = "active"
)

// Subscription подписка ученика. У неактивной подписки даты пустые.
type Subscription struct {
	DueAmount float64
	State     SubscriptionState
	StartDate *time.Time
	EndDate   *time.Time
}

// Active сообщает, активна ли подписка.
func (s *Subscription) Active() bool {
	return s.State == SubscriptionActive
}

// Activate оформляет или продлевает подписку на months месяцев с момента now.
// Продление начинает окно заново, остаток прошлого периода не переносится.
func (s *Subscription) Activate(now time.Time, months int) error {
	if months <= 0 {
		return ErrInvalidDuration
	}
	start := now
	end := now.AddDate(0, months, 0)
	s.State = SubscriptionActive
	s.StartDate = &start
	s.EndDate = &end
	return nil
}

// Expire деактивирует подписку, срок которой закончился до now.
func (s *Subscription) Expire(now time.Time) error {
	if s.State != SubscriptionActive {
		return ErrSubscriptionInactive
	}
	if s.EndDate == nil || !s.EndDate.Before(now) {
		return ErrSubscriptionNotExpired
	}
	s.State = SubscriptionInactive
	s.StartDate = nil
	s.EndDate = nil
	return nil
}

var classBasePrice = map[int]float64{
	6:  100,
	7:  120,
	8:  140,
	9:  160,
	10: 180,
}

// SubjectPrice стоимость одного предмета.
const SubjectPrice = 50

// DueAmount считает стоимость подписки по классу и числу предметов.
// Для неизвестного класса базовая цена нулевая.
func DueAmount(classLevel, subjects int) float64 {
	return classBasePrice[classLevel] + float64(subjects*SubjectPrice)
}
