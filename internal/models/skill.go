// Package models содержит доменные структуры сервиса обмена навыками:
// пользователи, навыки, заявки на соединение, сообщения и заказы.
package models

import (
	"encoding/json"
	"fmt"
)

// Level представляет уровень владения навыком как упорядоченное перечисление.
// Порядок значим: Beginner < Intermediate < Expert, сравнение уровней
// выполняется обычными операторами сравнения.
type Level int

// Допустимые уровни владения навыком.
const (
	LevelBeginner Level = iota + 1
	LevelIntermediate
	LevelExpert
)

// ParseLevel преобразует строковое представление уровня в Level.
// Возвращает ошибку, если строка не входит в перечисление.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "beginner":
		return LevelBeginner, nil
	case "intermediate":
		return LevelIntermediate, nil
	case "expert":
		return LevelExpert, nil
	}
	return 0, fmt.Errorf("unknown skill level: %q", s)
}

// String возвращает строковое представление уровня.
func (l Level) String() string {
	switch l {
	case LevelBeginner:
		return "beginner"
	case LevelIntermediate:
		return "intermediate"
	case LevelExpert:
		return "expert"
	}
	return "unknown"
}

// MarshalJSON сериализует уровень в строку перечисления.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON разбирает уровень из строки перечисления.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// TeachSkill описывает навык, которому пользователь готов обучать.
type TeachSkill struct {
	Skill       string `json:"skill"`
	Elaboration string `json:"elaboration"`
	Level       Level  `json:"level"`
	Verified    bool   `json:"verified"`
}

// LearnSkill описывает навык, который пользователь хочет освоить.
type LearnSkill struct {
	Skill        string `json:"skill"`
	Elaboration  string `json:"elaboration"`
	DesiredLevel Level  `json:"desired_level"`
}

// DummyTeachSkill используется для приёма навыка обучения из JSON-запроса,
// уровень приходит строкой и валидируется до конвертации в TeachSkill.
type DummyTeachSkill struct {
	Skill       string `json:"skill" validate:"required"`
	Elaboration string `json:"elaboration" validate:"required"`
	Level       string `json:"level" validate:"required,oneof=beginner intermediate expert"`
}

// DummyLearnSkill используется для приёма навыка изучения из JSON-запроса.
type DummyLearnSkill struct {
	Skill        string `json:"skill" validate:"required"`
	Elaboration  string `json:"elaboration" validate:"required"`
	DesiredLevel string `json:"desired_level" validate:"required,oneof=beginner intermediate expert"`
}
