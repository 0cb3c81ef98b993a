package handler

import (
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/config"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
)

// Repository 是 handler 所需的存储接口，由 *repository.Repository 实现
type Repository interface {
	GetUserByID(id int64) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	GetAllUsers() ([]*domain.User, error)

	CreateQuestionPaper(paper *domain.QuestionPaper) error
	GetQuestionPaperByID(id int64) (*domain.QuestionPaper, error)
	GetAllQuestionPapers() ([]*domain.QuestionPaper, error)
	UpdateQuestionPaper(paper *domain.QuestionPaper) error
	DeleteQuestionPaper(id int64) error
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository Repository
	translator ut.Translator
	clock      func() time.Time
	location   *time.Location // 发布时刻按该时区解释

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Repository) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 时区为空时 LoadLocation 返回 UTC
	location, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		translator: trans,
		clock:      time.Now,
		location:   location,

		Mux: chi.NewRouter(),
	}, nil
}

// now 返回配置时区下的当前时间，试卷的发布日期和发布时间都相对于该时区
func (h *Handler) now() time.Time {
	return h.clock().In(h.location)
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 试卷的查看不要求登录，但管理员登录后可以在发布前查看
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.optionalAuth)
		r.Route("/question-papers", func(r chi.Router) {
			r.Get("/", h.GetAllQuestionPapers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.questionPaper)
				r.Get("/", h.GetQuestionPaper)
				r.Get("/print", h.PrintQuestionPaper)
			})
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
		})

		r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Get("/users", h.GetAllUsers)

		r.Route("/admin/question-papers", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Post("/", h.CreateQuestionPaper)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.questionPaper)
				r.Patch("/", h.UpdateQuestionPaper)
				r.Delete("/", h.DeleteQuestionPaper)
			})
		})
	})
}
