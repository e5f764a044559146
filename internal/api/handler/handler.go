package handler

import "github.com/eyesmystery/bookclub-api/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Division *DivisionHandler
	Book     *BookHandler
	Review   *ReviewHandler
	Event    *EventHandler
	Article  *ArticleHandler
	News     *NewsHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		User:     NewUserHandler(svc.User),
		Division: NewDivisionHandler(svc.Division),
		Book:     NewBookHandler(svc.Book),
		Review:   NewReviewHandler(svc.Review),
		Event:    NewEventHandler(svc.Event),
		Article:  NewArticleHandler(svc.Article),
		News:     NewNewsHandler(svc.News),
		Export:   NewExportHandler(svc.Export),
	}
}
