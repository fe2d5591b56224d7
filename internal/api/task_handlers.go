package api

import (
	"errors"
	"net/http"

	"github.com/darmiel/realmbroker/internal/api/presenter"
	"github.com/darmiel/realmbroker/internal/tasks"
)

type TriggerTaskResponse struct {
	Status string `json:"status"`
}

// handleListTasks responds with the list of tasks and their statuses.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	if s.taskManager == nil {
		presenter.JSON(w, r, []tasks.TaskStatus{}, http.StatusOK)
		return
	}
	presenter.JSON(w, r, s.taskManager.ListStatus(), http.StatusOK)
}

// handleTriggerTask runs a task in the background.
func (s *Server) handleTriggerTask(w http.ResponseWriter, r *http.Request) {
	if s.taskManager == nil {
		presenter.Error(w, r, "task not found", http.StatusNotFound)
		return
	}
	if err := s.taskManager.Trigger(r.PathValue("name")); err != nil {
		taskError(w, r, err)
		return
	}
	presenter.JSON(w, r, TriggerTaskResponse{
		Status: "triggered",
	}, http.StatusAccepted)
}

// handleLogsForTask returns the log of the last run of a task.
func (s *Server) handleLogsForTask(w http.ResponseWriter, r *http.Request) {
	if s.taskManager == nil {
		presenter.Error(w, r, "task not found", http.StatusNotFound)
		return
	}
	logs, err := s.taskManager.GetLogs(r.PathValue("name"))
	if err != nil {
		taskError(w, r, err)
		return
	}
	presenter.JSON(w, r, logs, http.StatusOK)
}

func taskError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, tasks.ErrTaskNotFound) {
		presenter.Error(w, r, err.Error(), http.StatusNotFound)
		return
	}
	presenter.Error(w, r, err.Error(), http.StatusInternalServerError)
}
