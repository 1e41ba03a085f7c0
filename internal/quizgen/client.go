// Package quizgen реализует HTTP-клиента внешнего генератора вопросов
// для верификации навыков. Сервис верификации запрашивает по одному вопросу
// на раунд; сама генерация текста остаётся за внешним сервисом.
package quizgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// QuestionFetcher описывает источник вопросов для верификации навыка.
type QuestionFetcher interface {
	FetchQuestion(ctx context.Context, skill string, round int) (*Question, error)
}

// Question один вопрос с вариантами ответов и индексом правильного.
type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

// Client клиент API генератора вопросов.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт нового клиента генератора вопросов.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type generateRequest struct {
	Skill string `json:"skill"`
	Round int    `json:"round"`
}

// FetchQuestion запрашивает один вопрос по навыку для заданного раунда.
func (c *Client) FetchQuestion(ctx context.Context, skill string, round int) (*Question, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(generateRequest{Skill: skill, Round: round}); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/generate", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var question Question
	if err := json.NewDecoder(resp.Body).Decode(&question); err != nil {
		return nil, err
	}
	if question.Text == "" || len(question.Options) == 0 {
		return nil, errors.New("empty question from generator")
	}
	return &question, nil
}
