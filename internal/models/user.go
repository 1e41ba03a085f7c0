// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, списки навыков, баланс токенов
// и данные подписки. Структура используется в бизнес‑логике и при
// работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID                string       // Уникальный идентификатор пользователя
	Email              string       // Электронная почта
	Username           string       // Имя пользователя (уникальное)
	PasswordHash       string       // Хэш пароля пользователя
	Role               string       // Роль пользователя, admin или user
	AvatarURL          string       // Ссылка на аватар (внешнее хранилище)
	Tokens             int          // Баланс токенов, инвариант >= 0
	SkillsToTeach      []TeachSkill // Навыки, которым пользователь обучает
	SkillsToLearn      []LearnSkill // Навыки, которые пользователь изучает
	SubscriptionStatus string       // Статус подписки: free или active
	SubscriptionExpire *time.Time   // Дата истечения оплаченной подписки
	CreatedAt          time.Time
}

// HasActiveSubscription сообщает, действует ли у пользователя оплаченная
// подписка на момент now.
func (u *User) HasActiveSubscription(now time.Time) bool {
	return u.SubscriptionStatus == "active" &&
		u.SubscriptionExpire != nil && u.SubscriptionExpire.After(now)
}

// TeachSkillByName возвращает навык обучения по имени или nil.
func (u *User) TeachSkillByName(skill string) *TeachSkill {
	for i := range u.SkillsToTeach {
		if u.SkillsToTeach[i].Skill == skill {
			return &u.SkillsToTeach[i]
		}
	}
	return nil
}

// LearnSkillByName возвращает навык изучения по имени или nil.
func (u *User) LearnSkillByName(skill string) *LearnSkill {
	for i := range u.SkillsToLearn {
		if u.SkillsToLearn[i].Skill == skill {
			return &u.SkillsToLearn[i]
		}
	}
	return nil
}

// DummyUser используется для приёма данных регистрации из JSON-запроса.
// Пароль приходит открытым текстом и хэшируется до сохранения.
type DummyUser struct {
	Email         string            `json:"email" validate:"required,email"`
	Username      string            `json:"username" validate:"required,min=3"`
	Password      string            `json:"password" validate:"required,min=8"`
	AvatarURL     string            `json:"avatar_url"`
	SkillsToTeach []DummyTeachSkill `json:"skills_to_teach" validate:"dive"`
	SkillsToLearn []DummyLearnSkill `json:"skills_to_learn" validate:"dive"`
}

// ProfileSummary сокращённое представление профиля для списков
// (входящие заявки, соединения).
type ProfileSummary struct {
	UID           string       `json:"user_id"`
	Username      string       `json:"username"`
	AvatarURL     string       `json:"avatar_url,omitempty"`
	SkillsToTeach []TeachSkill `json:"skills_to_teach,omitempty"`
	SkillsToLearn []LearnSkill `json:"skills_to_learn,omitempty"`
}
