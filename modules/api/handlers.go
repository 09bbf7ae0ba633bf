package api

import (
	"unicode/utf8"

	domain "github.com/example/schedule-sync/domain/schedule"
	"github.com/example/schedule-sync/modules/auth"
	"github.com/example/schedule-sync/modules/google"
	"github.com/example/schedule-sync/modules/notification"
	"github.com/example/schedule-sync/modules/schedule"
	"github.com/gofiber/fiber/v2"
)

// Description length bounds of a schedule, in characters.
const (
	minDescription = 5
	maxDescription = 30
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth      auth.AuthPort
	google    google.GooglePort
	schedules schedule.SchedulePort
	notices   notification.NoticePort
	cookie    CookieConfig
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	authPort auth.AuthPort,
	googlePort google.GooglePort,
	schedulePort schedule.SchedulePort,
	noticePort notification.NoticePort,
	cookie CookieConfig,
) *Handlers {
	return &Handlers{
		auth:      authPort,
		google:    googlePort,
		schedules: schedulePort,
		notices:   noticePort,
		cookie:    cookie,
	}
}

// Root answers the bare service URL.
func (h *Handlers) Root(c *fiber.Ctx) error {
	return c.JSON(Envelope{Message: "schedule-sync api"})
}

// Health reports that the HTTP layer is up.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"module": "api",
	})
}

// SignUp handles user registration.
func (h *Handlers) SignUp(c *fiber.Ctx) error {
	var req SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}

	resp, err := h.auth.SignUp(c.UserContext(), auth.SignUpRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(Envelope{
		Message: "user registered",
		Data:    resp,
	})
}

// SignIn checks credentials and starts a session.
func (h *Handlers) SignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}

	resp, err := h.auth.SignIn(c.UserContext(), auth.SignInRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	setSessionCookie(c, resp.Token, h.cookie)
	return c.JSON(Envelope{
		Data: fiber.Map{
			"user":  resp.User,
			"token": resp.Token,
		},
	})
}

// UpdateUser patches the profile of the signed-in user.
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	session, err := CurrentSession(c)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}

	if err := h.auth.UpdateUser(c.UserContext(), auth.UpdateUserRequest{
		UserID:   session.UserID,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return err
	}

	return c.JSON(Envelope{Message: "user updated"})
}

// LinkGoogle exchanges an authorization code for calendar credentials.
func (h *Handlers) LinkGoogle(c *fiber.Ctx) error {
	session, err := CurrentSession(c)
	if err != nil {
		return err
	}

	var req LinkGoogleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}

	token, err := h.google.LinkAccount(c.UserContext(), session.UserID, req.Token)
	if err != nil {
		return err
	}

	return c.JSON(Envelope{
		Message: "google account linked",
		Data:    token,
	})
}

// GoogleAccessToken returns a usable provider access token, refreshing it if needed.
func (h *Handlers) GoogleAccessToken(c *fiber.Ctx) error {
	session, err := CurrentSession(c)
	if err != nil {
		return err
	}

	token, err := h.google.AccessToken(c.UserContext(), session.UserID)
	if err != nil {
		return err
	}

	return c.JSON(Envelope{Data: token})
}

// SyncNotices lists the schedules of the user that did not reach the calendar.
func (h *Handlers) SyncNotices(c *fiber.Ctx) error {
	session, err := CurrentSession(c)
	if err != nil {
		return err
	}

	notices, err := h.notices.ListNotices(c.UserContext(), session.UserID)
	if err != nil {
		return err
	}
	if notices == nil {
		notices = []notification.SyncNotice{}
	}

	return c.JSON(Envelope{Data: notices})
}

// ListSchedules returns the user's schedules ordered by start time.
func (h *Handlers) ListSchedules(c *fiber.Ctx) error {
	session, err := CurrentSession(c)
	if err != nil {
		return err
	}

	resp, err := h.schedules.ListSchedules(c.UserContext(), schedule.ListSchedulesRequest{
		UserID: session.UserID,
	})
	if err != nil {
		return err
	}

	list := resp.Schedules
	if list == nil {
		list = []domain.Schedule{}
	}
	return c.JSON(Envelope{
		Message: resp.Message,
		Data:    list,
	})
}

// GetSchedule returns one schedule of the user.
func (h *Handlers) GetSchedule(c *fiber.Ctx) error {
	session, err := CurrentSession(c)
	if err != nil {
		return err
	}

	record, err := h.schedules.GetSchedule(c.UserContext(), schedule.GetScheduleRequest{
		UserID:     session.UserID,
		ScheduleID: c.Params("id"),
	})
	if err != nil {
		return err
	}

	return c.JSON(Envelope{Data: record})
}

// CreateSchedule stores a schedule and mirrors it to the calendar.
func (h *Handlers) CreateSchedule(c *fiber.Ctx) error {
	session, err := CurrentSession(c)
	if err != nil {
		return err
	}

	data, err := scheduleData(c)
	if err != nil {
		return err
	}

	record, err := h.schedules.CreateSchedule(c.UserContext(), schedule.CreateScheduleRequest{
		UserID: session.UserID,
		Data:   data,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(Envelope{
		Message: "schedule created",
		Data:    record,
	})
}

// UpdateSchedule replaces the user-supplied fields of a schedule.
func (h *Handlers) UpdateSchedule(c *fiber.Ctx) error {
	session, err := CurrentSession(c)
	if err != nil {
		return err
	}

	data, err := scheduleData(c)
	if err != nil {
		return err
	}

	record, err := h.schedules.UpdateSchedule(c.UserContext(), schedule.UpdateScheduleRequest{
		UserID:     session.UserID,
		ScheduleID: c.Params("id"),
		Data:       data,
	})
	if err != nil {
		return err
	}

	return c.JSON(Envelope{
		Message: "schedule updated",
		Data:    record,
	})
}

// DeleteSchedule removes a schedule locally and from the calendar.
func (h *Handlers) DeleteSchedule(c *fiber.Ctx) error {
	session, err := CurrentSession(c)
	if err != nil {
		return err
	}

	if err := h.schedules.DeleteSchedule(c.UserContext(), schedule.DeleteScheduleRequest{
		UserID:     session.UserID,
		ScheduleID: c.Params("id"),
	}); err != nil {
		return err
	}

	return c.JSON(Envelope{Message: "schedule deleted"})
}

func scheduleData(c *fiber.Ctx) (domain.Data, error) {
	var req ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Data{}, badRequest("invalid request body, times must be RFC 3339")
	}

	n := utf8.RuneCountInString(req.Description)
	if n < minDescription || n > maxDescription {
		return domain.Data{}, badRequest("description must be between 5 and 30 characters")
	}
	if req.StartTime == nil {
		return domain.Data{}, schedule.ErrMissingStart
	}

	return domain.Data{
		Description: req.Description,
		StartTime:   *req.StartTime,
		EndTime:     req.EndTime,
	}, nil
}
