package handler

import (
	"errors"
	"net/http"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/notification"
	"taskhub/internal/policy"
	"taskhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskRepo repository.TaskRepositoryInterface
	userRepo repository.UserRepositoryInterface
	notifier notification.Notifier
}

func NewTaskHandler(
	taskRepo repository.TaskRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	notifier notification.Notifier,
) *TaskHandler {
	return &TaskHandler{
		taskRepo: taskRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// TaskCreateRequest представляет запрос на создание задачи
type TaskCreateRequest struct {
	Title       string     `json:"title" binding:"required,max=100"`
	Description string     `json:"description" binding:"required"`
	Status      string     `json:"status" binding:"omitempty,oneof=To-Do In-Progress Done"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	AssignedTo  string     `json:"assignedTo" binding:"required,uuid"`
	DueDate     *time.Time `json:"dueDate"`
}

// TaskUpdateRequest представляет частичное обновление задачи:
// отсутствующие поля не трогаются
type TaskUpdateRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=100"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" binding:"omitempty,oneof=To-Do In-Progress Done"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	AssignedTo  *string    `json:"assignedTo" binding:"omitempty,uuid"`
	DueDate     *time.Time `json:"dueDate"`
}

// UserRef содержит разрешенную ссылку на пользователя
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskResponse представляет ответ с данными задачи
type TaskResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssignedTo  UserRef `json:"assignedTo"`
	CreatedBy   UserRef `json:"createdBy"`
	DueDate     *string `json:"dueDate,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func newTaskResponse(task *model.Task) TaskResponse {
	response := TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		AssignedTo: UserRef{
			ID:    task.AssignedTo.String(),
			Name:  task.Assignee.Name,
			Email: task.Assignee.Email,
		},
		CreatedBy: UserRef{
			ID:    task.CreatedBy.String(),
			Name:  task.Creator.Name,
			Email: task.Creator.Email,
		},
		CreatedAt: task.CreatedAt.Format(time.RFC3339),
	}
	if task.DueDate != nil {
		dueDate := task.DueDate.Format(time.RFC3339)
		response.DueDate = &dueDate
	}
	return response
}

// Create godoc
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TaskCreateRequest true "Task data"
// @Success      201 {object} TaskResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	var req TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	assignedTo, err := uuid.Parse(req.AssignedTo)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid assigned user ID", err)
		return
	}

	// Проверяем, что назначенный пользователь существует
	assignee, err := h.userRepo.GetByID(c.Request.Context(), assignedTo)
	if err != nil {
		respondServerError(c, err)
		return
	}
	if assignee == nil {
		respondError(c, http.StatusBadRequest, "Assigned user not found", nil)
		return
	}

	status := req.Status
	if status == "" {
		status = model.StatusToDo
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		AssignedTo:  assignedTo,
		CreatedBy:   requester.ID,
		DueDate:     req.DueDate,
	}

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		respondServerError(c, err)
		return
	}

	created, err := h.taskRepo.GetByIDWithUsers(c.Request.Context(), task.ID)
	if err != nil {
		respondServerError(c, err)
		return
	}

	// Новая задача всегда уведомляет назначенного; результат только логируется
	h.notifier.SendTaskAssignment(c.Request.Context(), created)

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": newTaskResponse(created)})
}

// List godoc
// @Summary      List tasks visible to the requester
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Filter by status"
// @Param        priority query string false "Filter by priority"
// @Success      200 {array} TaskResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	// Видимость ограничивается в самом запросе, а не фильтрацией результата
	filter := repository.TaskFilter{
		AssignedTo: policy.ListScope(requester),
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
	}

	tasks, err := h.taskRepo.List(c.Request.Context(), filter)
	if err != nil {
		respondServerError(c, err)
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, newTaskResponse(&tasks[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(responses),
		"data":    responses,
	})
}

// GetByID godoc
// @Summary      Get a single task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} TaskResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid task ID", err)
		return
	}

	task, err := h.taskRepo.GetByIDWithUsers(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found", nil)
			return
		}
		respondServerError(c, err)
		return
	}

	if !policy.CanViewTask(requester, task) {
		respondError(c, http.StatusForbidden, "Not authorized to access this task", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": newTaskResponse(task)})
}

// Update godoc
// @Summary      Update a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Param        request body TaskUpdateRequest true "Fields to change"
// @Success      200 {object} TaskResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid task ID", err)
		return
	}

	var req TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Авторизация и сравнение назначения идут по сырой ссылке assigned_to,
	// до загрузки связанных пользователей
	task, err := h.taskRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found", nil)
			return
		}
		respondServerError(c, err)
		return
	}

	if !policy.CanUpdateTask(requester, task) {
		respondError(c, http.StatusForbidden, "Not authorized to update this task", nil)
		return
	}

	// Фиксируем смену назначения ДО применения обновления
	isAssignmentChanged := false
	var newAssignedTo uuid.UUID
	if req.AssignedTo != nil {
		newAssignedTo, err = uuid.Parse(*req.AssignedTo)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid assigned user ID", err)
			return
		}
		isAssignmentChanged = newAssignedTo != task.AssignedTo
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		task.Title = *req.Title
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
		fields["description"] = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
		fields["status"] = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
		fields["priority"] = *req.Priority
	}
	if req.AssignedTo != nil {
		task.AssignedTo = newAssignedTo
		fields["assigned_to"] = newAssignedTo
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
		fields["due_date"] = req.DueDate
	}

	// Повторная проверка ограничений на слитом документе
	if err := task.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if isAssignmentChanged {
		assignee, err := h.userRepo.GetByID(c.Request.Context(), newAssignedTo)
		if err != nil {
			respondServerError(c, err)
			return
		}
		if assignee == nil {
			respondError(c, http.StatusBadRequest, "Assigned user not found", nil)
			return
		}
	}

	if len(fields) > 0 {
		if err := h.taskRepo.UpdateFields(c.Request.Context(), id, fields); err != nil {
			if errors.Is(err, repository.ErrTaskNotFound) {
				respondError(c, http.StatusNotFound, "Task not found", nil)
				return
			}
			respondServerError(c, err)
			return
		}
	}

	updated, err := h.taskRepo.GetByIDWithUsers(c.Request.Context(), id)
	if err != nil {
		respondServerError(c, err)
		return
	}

	// Уведомляем нового назначенного; обновление без смены назначения
	// уведомлений не шлет
	if isAssignmentChanged {
		h.notifier.SendTaskAssignment(c.Request.Context(), updated)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": newTaskResponse(updated)})
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} map[string]interface{}
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid task ID", err)
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found", nil)
			return
		}
		respondServerError(c, err)
		return
	}

	// Удалять могут только админ и создатель, назначенный — нет
	if !policy.CanDeleteTask(requester, task) {
		respondError(c, http.StatusForbidden, "Not authorized to delete this task", nil)
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found", nil)
			return
		}
		respondServerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}
