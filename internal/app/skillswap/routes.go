// Package skillswap предоставляет маршруты для основного приложения.
package skillswap

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/skillswap/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/auth/register"
	chathistory "github.com/magabrotheeeer/skillswap/internal/http/handlers/chat/history"
	chatsend "github.com/magabrotheeeer/skillswap/internal/http/handlers/chat/send"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/health"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/interaction/charge"
	matchlist "github.com/magabrotheeeer/skillswap/internal/http/handlers/match/list"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/quiz/answer"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/quiz/selectanswer"
	quizstart "github.com/magabrotheeeer/skillswap/internal/http/handlers/quiz/start"
	quizstatus "github.com/magabrotheeeer/skillswap/internal/http/handlers/quiz/status"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/request/accept"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/request/connections"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/request/decline"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/request/received"
	requestsend "github.com/magabrotheeeer/skillswap/internal/http/handlers/request/send"
	skillupdate "github.com/magabrotheeeer/skillswap/internal/http/handlers/skill/update"
	skillverify "github.com/magabrotheeeer/skillswap/internal/http/handlers/skill/verify"
	tokenadd "github.com/magabrotheeeer/skillswap/internal/http/handlers/token/add"
	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/skillswap/internal/services/auth"
	chatservice "github.com/magabrotheeeer/skillswap/internal/services/chat"
	ledgerservice "github.com/magabrotheeeer/skillswap/internal/services/ledger"
	matchservice "github.com/magabrotheeeer/skillswap/internal/services/match"
	paymentservice "github.com/magabrotheeeer/skillswap/internal/services/payment"
	requestservice "github.com/magabrotheeeer/skillswap/internal/services/request"
	skillsservice "github.com/magabrotheeeer/skillswap/internal/services/skills"
	verificationservice "github.com/magabrotheeeer/skillswap/internal/services/verification"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
	"github.com/magabrotheeeer/skillswap/internal/ws"
)

// Services зависимости маршрутов приложения.
type Services struct {
	Auth         *authservice.Service
	Match        *matchservice.Service
	Ledger       *ledgerservice.Service
	Skills       *skillsservice.Service
	Request      *requestservice.Service
	Chat         *chatservice.Service
	Verification *verificationservice.Service
	Payment      *paymentservice.Service
	Storage      *repository.Storage
	Maker        jwt.Maker
	Hub          *ws.Hub
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, s.Storage).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/match/{userId}", matchlist.New(logger, s.Match).ServeHTTP)
			r.Put("/users/{userId}/skills", skillupdate.New(logger, s.Skills).ServeHTTP)
			r.Put("/verify-teaching-skill", skillverify.New(logger, s.Skills).ServeHTTP)
			r.Put("/add-tokens", tokenadd.New(logger, s.Ledger).ServeHTTP)
			r.Post("/interactions", charge.New(logger, s.Ledger).ServeHTTP)

			r.Post("/requests", requestsend.New(logger, s.Request).ServeHTTP)
			r.Post("/requests/accept", accept.New(logger, s.Request).ServeHTTP)
			r.Post("/requests/decline", decline.New(logger, s.Request).ServeHTTP)
			r.Get("/requests/received", received.New(logger, s.Request).ServeHTTP)
			r.Get("/connections", connections.New(logger, s.Request).ServeHTTP)

			r.Get("/chat/history/{userA}/{userB}", chathistory.New(logger, s.Chat).ServeHTTP)
			r.Post("/chat/messages", chatsend.New(logger, s.Chat).ServeHTTP)

			r.Post("/quiz/start", quizstart.New(logger, s.Verification).ServeHTTP)
			r.Post("/quiz/select", selectanswer.New(logger, s.Verification).ServeHTTP)
			r.Post("/quiz/answer", answer.New(logger, s.Verification).ServeHTTP)
			r.Get("/quiz/status", quizstatus.New(logger, s.Verification).ServeHTTP)

			r.Post("/pay/createOrder", paymentcreate.New(logger, s.Payment).ServeHTTP)
			r.Get("/pay/user/{userId}", paymentlist.New(logger, s.Payment).ServeHTTP)
		})

		// Webhook endpoint (без аутентификации)
		r.Post("/pay/webhook", paymentwebhook.New(logger, s.Payment).ServeHTTP)
	})

	// Websocket-канал чата, пользователь определяется по JWT из query.
	r.Get("/ws/chat", ws.ServeWS(s.Hub, s.Maker, logger))

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
