package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/service"
	"github.com/eyesmystery/bookclub-api/pkg/response"
)

// EventHandler 活动 HTTP 处理器
type EventHandler struct {
	eventSvc service.EventService
}

// NewEventHandler 创建 EventHandler
func NewEventHandler(eventSvc service.EventService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

// List 活动列表，按开始时间升序
// GET /api/events?division_id=&upcoming=&search=
func (h *EventHandler) List(c *gin.Context) {
	var q dto.EventListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.eventSvc.List(c.Request.Context(), actor(c), &q)
	if err != nil {
		handleError(c, err)
		return
	}
	writePage(c, "events", page)
}

// Calendar iCalendar 订阅
// GET /api/events/calendar.ics
func (h *EventHandler) Calendar(c *gin.Context) {
	var q dto.EventListQuery
	if !bindQuery(c, &q) {
		return
	}
	body, err := h.eventSvc.Calendar(c.Request.Context(), actor(c), &q)
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="events.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// Get 活动详情
// GET /api/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "Event")
	if !ok {
		return
	}
	event, err := h.eventSvc.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "event", event)
}

// Create 创建活动（管理员）
// POST /api/events
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.eventSvc.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, "Event created successfully", "event", event)
}

// Update 更新活动（管理员）
// PUT /api/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "Event")
	if !ok {
		return
	}
	var req dto.UpdateEventRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.eventSvc.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "Event updated successfully", "event", event)
}

// Delete 删除活动（管理员）
// DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "Event")
	if !ok {
		return
	}
	if err := h.eventSvc.Delete(c.Request.Context(), actor(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "Event deleted successfully", "", nil)
}
