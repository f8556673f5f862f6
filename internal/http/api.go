package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/domain"
	"task-tracker/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	tasks  service.TaskService
	logger *logrus.Logger
}

func NewHandler(users service.UserService, tasks service.TaskService, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:  users,
		tasks:  tasks,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), h.requestLogger())

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Server is running")
	})

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
		api.POST("/auth/signup", h.signup)
		api.POST("/auth/login", h.login)
	}

	// /todos is the legacy path; older clients still call it.
	for _, prefix := range []string{"/tasks", "/todos"} {
		tasks := api.Group(prefix, h.requireAuth())
		tasks.POST("", h.createTask)
		tasks.GET("", h.listTasks)
		tasks.GET("/:id", h.getTask)
		tasks.PATCH("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.users.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionToResponse(session))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionToResponse(session))
}

type createTaskRequest struct {
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Status      domain.TaskStatus `json:"status"`
	DueDate     *string           `json:"dueDate"`
	AssignedTo  *string           `json:"assignedTo"`
}

type updateTaskRequest struct {
	Title       domain.Field[string]            `json:"title"`
	Description domain.Field[*string]           `json:"description"`
	Status      domain.Field[domain.TaskStatus] `json:"status"`
	DueDate     domain.Field[*string]           `json:"dueDate"`
	AssignedTo  domain.Field[*string]           `json:"assignedTo"`
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		writeMessage(c, http.StatusBadRequest, "Invalid dueDate: use RFC 3339 or YYYY-MM-DD")
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), currentUser(c), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     dueDate,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(*task))
}

func (h *Handler) listTasks(c *gin.Context) {
	page, err := h.tasks.ListTasks(c.Request.Context(), currentUser(c), service.ListTasksInput{
		Page:   intQuery(c, "page"),
		Limit:  intQuery(c, "limit"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := TaskListResponse{
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
		Todos: make([]TaskResponse, len(page.Tasks)),
	}
	for i := range page.Tasks {
		resp.Todos[i] = taskToResponse(page.Tasks[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getTask(c *gin.Context) {
	task, err := h.tasks.GetTask(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) updateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	}
	if req.DueDate.Set {
		dueDate, err := parseDueDate(req.DueDate.Value)
		if err != nil {
			writeMessage(c, http.StatusBadRequest, "Invalid dueDate: use RFC 3339 or YYYY-MM-DD")
			return
		}
		patch.DueDate = domain.NewField(dueDate)
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), currentUser(c), c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) deleteTask(c *gin.Context) {
	if err := h.tasks.DeleteTask(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	writeMessage(c, http.StatusOK, "Todo deleted successfully")
}

// intQuery returns nil when the parameter is absent or not an integer, so the
// service applies its default.
func intQuery(c *gin.Context, key string) *int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &n
}
