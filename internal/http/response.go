package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/domain"
	"task-tracker/internal/service"
)

const dateOnly = "2006-01-02"

var errInvalidDueDate = errors.New("invalid due date")

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SessionResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type TaskResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description,omitempty"`
	Status      domain.TaskStatus `json:"status"`
	DueDate     *string           `json:"dueDate,omitempty"`
	CreatedBy   *UserResponse     `json:"createdBy"`
	AssignedTo  *UserResponse     `json:"assignedTo"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

type TaskListResponse struct {
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Todos []TaskResponse `json:"todos"`
}

func sessionToResponse(s *service.Session) SessionResponse {
	return SessionResponse{
		Token: s.Token,
		User: UserResponse{
			ID:    s.User.ID,
			Name:  s.User.Name,
			Email: s.User.Email,
		},
	}
}

func summaryToResponse(s *domain.UserSummary) *UserResponse {
	if s == nil {
		return nil
	}
	return &UserResponse{ID: s.ID, Name: s.Name, Email: s.Email}
}

func taskToResponse(task domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		CreatedBy:   summaryToResponse(task.Creator),
		AssignedTo:  summaryToResponse(task.Assignee),
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if task.DueDate != nil {
		v := task.DueDate.UTC().Format(time.RFC3339)
		resp.DueDate = &v
	}
	return resp
}

// parseDueDate accepts RFC 3339 timestamps and bare dates. Nil or empty clears the date.
func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, dateOnly} {
		if t, err := time.Parse(layout, *raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errInvalidDueDate
}

func statusForKind(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindAuth:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a service error to its status. Internal errors are logged and
// answered with a generic message.
func (h *Handler) writeError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) && svcErr.Kind != service.KindInternal {
		writeMessage(c, statusForKind(svcErr.Kind), svcErr.Message)
		return
	}

	h.logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("request failed")
	writeMessage(c, http.StatusInternalServerError, "Internal Server Error")
}

func writeMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
