package models

// Candidate представляет подобранного собеседника: пользователь, который
// может научить чему-то нужному и сам хочет научиться чему-то из навыков
// запрашивающего. MatchScore — количество совпавших пар навыков.
type Candidate struct {
	UID           string       `json:"user_id"`
	Username      string       `json:"username"`
	AvatarURL     string       `json:"avatar_url,omitempty"`
	SkillsToTeach []TeachSkill `json:"skills_to_teach"`
	SkillsToLearn []LearnSkill `json:"skills_to_learn"`
	MatchScore    int          `json:"match_score"`
}

// CurrentUserView профиль запрашивающего в ответе подбора:
// навыки и баланс токенов для отрисовки на клиенте.
type CurrentUserView struct {
	UID           string       `json:"user_id"`
	Username      string       `json:"username"`
	AvatarURL     string       `json:"avatar_url,omitempty"`
	SkillsToTeach []TeachSkill `json:"skills_to_teach"`
	SkillsToLearn []LearnSkill `json:"skills_to_learn"`
	Tokens        int          `json:"tokens"`
}

// MatchResult результат подбора: профиль запрашивающего и ранжированный
// список кандидатов.
type MatchResult struct {
	CurrentUser  CurrentUserView `json:"currentUser"`
	MatchedUsers []Candidate     `json:"matchedUsers"`
}
