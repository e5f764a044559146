package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/model"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/internal/repository"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
	"github.com/eyesmystery/bookclub-api/pkg/validator"
)

const (
	msgEndBeforeStart = "The end date must be a date after or equal to start date."
	calendarProductID = "-//bookclub-api//events//EN"
	calendarName      = "Book Club Events"
)

// EventService 活动业务接口
type EventService interface {
	List(ctx context.Context, actor policy.Actor, q *dto.EventListQuery) (*dto.PageResult[dto.EventResponse], error)
	Get(ctx context.Context, actor policy.Actor, id uint) (*dto.EventResponse, error)
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uint, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
	Calendar(ctx context.Context, actor policy.Actor, q *dto.EventListQuery) (string, error)
}

type eventService struct {
	repo   *repository.Repository
	policy *policy.Policy
	pager  pager
	logger *zap.Logger
	now    func() time.Time
}

// NewEventService 创建 EventService 实例
func NewEventService(repo *repository.Repository, pol *policy.Policy, p pager, logger *zap.Logger) EventService {
	return &eventService{repo: repo, policy: pol, pager: p, logger: logger, now: time.Now}
}

func (s *eventService) filter(q *dto.EventListQuery) repository.EventFilter {
	f := repository.EventFilter{DivisionID: q.DivisionID, Search: q.Search}
	if q.Upcoming {
		now := s.now().UTC()
		f.From = &now
	}
	return f
}

// ────────────────────── List / Get ──────────────────────

func (s *eventService) List(ctx context.Context, actor policy.Actor, q *dto.EventListQuery) (*dto.PageResult[dto.EventResponse], error) {
	if err := s.policy.Authorize(actor, policy.ActionList, policy.ResourceEvent, nil); err != nil {
		return nil, err
	}

	pg := s.pager.page(q.PageQuery)
	events, total, err := s.repo.Event.List(ctx, s.filter(q), pg)
	if err != nil {
		s.logger.Error("查询活动列表失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, toEventResponse(&events[i]))
	}
	return pageResult(items, total, pg), nil
}

func (s *eventService) Get(ctx context.Context, actor policy.Actor, id uint) (*dto.EventResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionView, policy.ResourceEvent, nil); err != nil {
		return nil, err
	}
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "Event", id)
	}
	resp := toEventResponse(event)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *eventService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionCreate, policy.ResourceEvent, nil); err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	start, end := parseEventDates(&req.StartDate, req.EndDate, fe)
	if err := checkDivision(ctx, s.repo.Division, req.DivisionID, fe); err != nil {
		s.logger.Error("检查分部失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	if start != nil {
		checkEventRange(*start, end, fe)
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	event := &model.Event{
		Title:           req.Title,
		Description:     req.Description,
		StartDate:       *start,
		EndDate:         end,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
		DivisionID:      req.DivisionID,
	}
	if err := s.repo.Event.Create(ctx, event); err != nil {
		return nil, storageError(s.logger, err, "创建活动")
	}

	s.logger.Info("创建活动", zap.Uint("event_id", event.ID), zap.Uint("by", actor.ID))
	return s.reload(ctx, event.ID)
}

// ────────────────────── Update ──────────────────────

func (s *eventService) Update(ctx context.Context, actor policy.Actor, id uint, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "Event", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionUpdate, policy.ResourceEvent, nil); err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	start, end := parseEventDates(req.StartDate, req.EndDate.Value, fe)
	if err := checkDivision(ctx, s.repo.Division, req.DivisionID.Value, fe); err != nil {
		s.logger.Error("检查分部失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	// 以合并后的起止时间校验先后
	mergedStart := event.StartDate
	if start != nil {
		mergedStart = *start
	}
	mergedEnd := event.EndDate
	if req.EndDate.Set {
		mergedEnd = end
	}
	if _, bad := fe["start_date"]; !bad {
		checkEventRange(mergedStart, mergedEnd, fe)
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	event.StartDate = mergedStart
	event.EndDate = mergedEnd
	if req.Location != nil {
		event.Location = req.Location
	}
	if req.MaxParticipants != nil {
		event.MaxParticipants = req.MaxParticipants
	}
	req.DivisionID.Apply(&event.DivisionID)

	if err := s.repo.Event.Update(ctx, event); err != nil {
		return nil, storageError(s.logger, err, "更新活动")
	}

	s.logger.Info("更新活动", zap.Uint("event_id", event.ID), zap.Uint("by", actor.ID))
	return s.reload(ctx, event.ID)
}

// ────────────────────── Delete ──────────────────────

func (s *eventService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	if _, err := s.repo.Event.GetByID(ctx, id); err != nil {
		return lookupError(s.logger, err, "Event", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionDelete, policy.ResourceEvent, nil); err != nil {
		return err
	}

	if err := s.repo.Event.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Event")
		}
		return storageError(s.logger, err, "删除活动")
	}

	s.logger.Info("删除活动", zap.Uint("event_id", id), zap.Uint("by", actor.ID))
	return nil
}

// ────────────────────── iCalendar ──────────────────────

// Calendar 以 iCalendar 格式导出活动（与列表使用相同的筛选条件）
func (s *eventService) Calendar(ctx context.Context, actor policy.Actor, q *dto.EventListQuery) (string, error) {
	if err := s.policy.Authorize(actor, policy.ActionList, policy.ResourceEvent, nil); err != nil {
		return "", err
	}

	events, err := s.repo.Event.ListAll(ctx, s.filter(q))
	if err != nil {
		s.logger.Error("查询活动失败", zap.Error(err))
		return "", apperrors.Internal(err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(calendarName)

	for i := range events {
		e := &events[i]
		vevent := cal.AddEvent(fmt.Sprintf("event-%d@bookclub-api", e.ID))
		vevent.SetDtStampTime(e.UpdatedAt.UTC())
		vevent.SetCreatedTime(e.CreatedAt.UTC())
		vevent.SetModifiedAt(e.UpdatedAt.UTC())
		vevent.SetStartAt(e.StartDate.UTC())
		if e.EndDate != nil {
			vevent.SetEndAt(e.EndDate.UTC())
		}
		vevent.SetSummary(e.Title)
		vevent.SetDescription(e.Description)
		if e.Location != nil {
			vevent.SetLocation(*e.Location)
		}
	}

	return cal.Serialize(), nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *eventService) reload(ctx context.Context, id uint) (*dto.EventResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "Event", id)
	}
	resp := toEventResponse(event)
	return &resp, nil
}

// parseEventDates 解析起止时间，统一转为 UTC
func parseEventDates(startRaw, endRaw *string, fe fieldErrors) (*time.Time, *time.Time) {
	var start, end *time.Time
	if startRaw != nil {
		t, err := validator.ParseDateTime(*startRaw)
		if err != nil {
			fe.add("start_date", "The start date field must be a valid date.")
		} else {
			t = t.UTC()
			start = &t
		}
	}
	if endRaw != nil {
		t, err := validator.ParseDateTime(*endRaw)
		if err != nil {
			fe.add("end_date", "The end date field must be a valid date.")
		} else {
			t = t.UTC()
			end = &t
		}
	}
	return start, end
}

func checkEventRange(start time.Time, end *time.Time, fe fieldErrors) {
	if end != nil && end.Before(start) {
		fe.add("end_date", msgEndBeforeStart)
	}
}
