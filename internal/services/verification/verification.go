// Package verification реализует верификацию навыков обучения через тест:
// десять раундов по одному вопросу с ограничением времени на ответ.
// Состояние сессии держится в памяти процесса; при проходном количестве
// правильных ответов навык помечается верифицированным и начисляется награда.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/quizgen"
	"github.com/magabrotheeeer/skillswap/internal/services/ledger"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
)

// Параметры теста: число раундов, время на ответ и порог прохождения.
const (
	TotalRounds   = 10
	RoundTimeout  = 30 * time.Second
	PassThreshold = 7
)

// Ошибки уровня сервиса, проверяются обработчиками через errors.Is.
var (
	ErrSkillNotFound   = repository.ErrSkillNotFound
	ErrAlreadyVerified = errors.New("teaching skill is already verified")
	ErrNoActiveSession = errors.New("no active verification session")
	ErrQuizFinished    = errors.New("verification quiz is already finished")
	ErrInvalidOption   = errors.New("selected option is out of range")
	ErrQuestionPending = errors.New("question for current round is not ready")
)

// Repository определяет методы хранилища для верификации навыков.
type Repository interface {
	// IsTeachSkillVerified сообщает статус верификации навыка обучения.
	IsTeachSkillVerified(ctx context.Context, userUID, skill string) (bool, error)
	// VerifySkillAndCredit помечает навык верифицированным и зачисляет награду.
	VerifySkillAndCredit(ctx context.Context, userUID, skill string, reward int) error
}

// session состояние одного теста. Доступ только под мьютексом сервиса.
type session struct {
	userUID  string
	skill    string
	round    int
	correct  int
	question *quizgen.Question
	selected int // -1, пока вариант не выбран
	timer    *time.Timer
	finished bool
	passed   bool
	// Ошибка начисления награды после прохождения: тест пройден,
	// но повторная попытка записи остаётся за клиентом.
	creditErr error
}

// RoundView вопрос текущего раунда без индекса правильного ответа.
type RoundView struct {
	Round    int      `json:"round"`
	Total    int      `json:"total_rounds"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// StatusView текущее состояние теста.
type StatusView struct {
	Skill       string `json:"skill"`
	Round       int    `json:"round"`
	Correct     int    `json:"correct"`
	Finished    bool   `json:"finished"`
	Passed      bool   `json:"passed"`
	CreditError string `json:"credit_error,omitempty"`
}

// Service ведёт сессии верификации. Одна активная сессия на пользователя.
type Service struct {
	repo    Repository
	fetcher quizgen.QuestionFetcher
	log     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// New создает новый экземпляр Service.
func New(repo Repository, fetcher quizgen.QuestionFetcher, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		fetcher:  fetcher,
		log:      log,
		sessions: make(map[string]*session),
	}
}

// Start начинает тест по навыку. Навык должен существовать в списке
// обучения пользователя и быть ещё не верифицированным. Повторный Start
// перезапускает тест с первого раунда.
func (s *Service) Start(ctx context.Context, userUID, skill string) (*RoundView, error) {
	const op = "verification.Start"

	verified, err := s.repo.IsTeachSkillVerified(ctx, userUID, skill)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if verified {
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyVerified)
	}

	question, err := s.fetcher.FetchQuestion(ctx, skill, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.sessions[userUID]; ok && old.timer != nil {
		old.timer.Stop()
	}
	sess := &session{
		userUID:  userUID,
		skill:    skill,
		round:    1,
		question: question,
		selected: -1,
	}
	sess.timer = time.AfterFunc(RoundTimeout, func() { s.expireRound(userUID, 1) })
	s.sessions[userUID] = sess

	s.log.Info("started verification quiz", sl.UID(userUID), slog.String("skill", skill))
	return roundView(sess), nil
}

// SelectAnswer запоминает выбранный вариант текущего раунда. Выбор можно
// менять до подтверждения или истечения времени.
func (s *Service) SelectAnswer(userUID string, option int) error {
	const op = "verification.SelectAnswer"

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userUID]
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNoActiveSession)
	}
	if sess.finished {
		return fmt.Errorf("%s: %w", op, ErrQuizFinished)
	}
	if sess.question == nil {
		return fmt.Errorf("%s: %w", op, ErrQuestionPending)
	}
	if option < 0 || option >= len(sess.question.Options) {
		return fmt.Errorf("%s: %w", op, ErrInvalidOption)
	}
	sess.selected = option
	return nil
}

// SubmitAnswer подтверждает выбранный вариант, останавливает таймер раунда
// и переводит сессию на следующий раунд либо завершает тест. Неподтверждённый
// до истечения времени раунд засчитывается автоматически.
func (s *Service) SubmitAnswer(ctx context.Context, userUID string) (*StatusView, error) {
	const op = "verification.SubmitAnswer"

	s.mu.Lock()
	sess, ok := s.sessions[userUID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, ErrNoActiveSession)
	}
	if sess.finished {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, ErrQuizFinished)
	}
	if sess.question == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, ErrQuestionPending)
	}
	if sess.timer != nil {
		sess.timer.Stop()
	}
	s.scoreAndAdvance(ctx, sess)
	view := statusView(sess)
	s.mu.Unlock()
	return view, nil
}

// Status возвращает состояние теста. Если вопрос очередного раунда не был
// получен при переходе, Status повторяет запрос к генератору.
func (s *Service) Status(ctx context.Context, userUID string) (*StatusView, error) {
	const op = "verification.Status"

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userUID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNoActiveSession)
	}
	if !sess.finished && sess.question == nil {
		s.fetchRound(ctx, sess)
	}
	return statusView(sess), nil
}

// CurrentRound возвращает вопрос текущего раунда, при необходимости
// повторяя неудавшийся запрос к генератору.
func (s *Service) CurrentRound(ctx context.Context, userUID string) (*RoundView, error) {
	const op = "verification.CurrentRound"

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userUID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNoActiveSession)
	}
	if sess.finished {
		return nil, fmt.Errorf("%s: %w", op, ErrQuizFinished)
	}
	if sess.question == nil {
		s.fetchRound(ctx, sess)
		if sess.question == nil {
			return nil, fmt.Errorf("%s: %w", op, ErrQuestionPending)
		}
	}
	return roundView(sess), nil
}

// expireRound срабатывает по таймеру: выбранный вариант засчитывается,
// отсутствие выбора считается неправильным ответом.
func (s *Service) expireRound(userUID string, round int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userUID]
	if !ok || sess.finished || sess.round != round || sess.question == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), RoundTimeout)
	defer cancel()
	s.scoreAndAdvance(ctx, sess)
}

// scoreAndAdvance засчитывает ответ текущего раунда и переводит сессию
// дальше. Вызывается только под мьютексом.
func (s *Service) scoreAndAdvance(ctx context.Context, sess *session) {
	if sess.selected == sess.question.CorrectOption {
		sess.correct++
	}

	if sess.round == TotalRounds {
		s.finish(ctx, sess)
		return
	}

	sess.round++
	sess.selected = -1
	sess.question = nil
	s.fetchRound(ctx, sess)
}

// fetchRound запрашивает вопрос текущего раунда и перезапускает таймер.
// При ошибке генератора вопрос остаётся пустым: таймер не идёт, клиент
// повторяет попытку через CurrentRound. Вызывается только под мьютексом.
func (s *Service) fetchRound(ctx context.Context, sess *session) {
	question, err := s.fetcher.FetchQuestion(ctx, sess.skill, sess.round)
	if err != nil {
		s.log.Warn("failed to fetch quiz question",
			sl.UID(sess.userUID),
			slog.String("skill", sess.skill),
			slog.Int("round", sess.round),
			sl.Err(err))
		return
	}
	sess.question = question
	sess.selected = -1
	round := sess.round
	sess.timer = time.AfterFunc(RoundTimeout, func() { s.expireRound(sess.userUID, round) })
}

// finish завершает тест. При проходном результате навык помечается
// верифицированным и награда зачисляется одной транзакцией; ошибка записи
// не объявляет тест проваленным, а сохраняется в статусе сессии.
func (s *Service) finish(ctx context.Context, sess *session) {
	sess.finished = true
	sess.question = nil
	sess.passed = sess.correct >= PassThreshold

	if !sess.passed {
		s.log.Info("verification quiz failed",
			sl.UID(sess.userUID),
			slog.String("skill", sess.skill),
			slog.Int("correct", sess.correct))
		return
	}

	if err := s.repo.VerifySkillAndCredit(ctx, sess.userUID, sess.skill, ledger.VerificationReward); err != nil {
		sess.creditErr = err
		s.log.Error("failed to verify skill and credit reward",
			sl.UID(sess.userUID),
			slog.String("skill", sess.skill),
			sl.Err(err))
		return
	}
	s.log.Info("verification quiz passed",
		sl.UID(sess.userUID),
		slog.String("skill", sess.skill),
		slog.Int("correct", sess.correct))
}

func roundView(sess *session) *RoundView {
	return &RoundView{
		Round:    sess.round,
		Total:    TotalRounds,
		Question: sess.question.Text,
		Options:  sess.question.Options,
	}
}

func statusView(sess *session) *StatusView {
	view := &StatusView{
		Skill:    sess.skill,
		Round:    sess.round,
		Correct:  sess.correct,
		Finished: sess.finished,
		Passed:   sess.passed,
	}
	if sess.creditErr != nil {
		view.CreditError = sess.creditErr.Error()
	}
	return view
}
