package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/darmiel/realmbroker/internal/api"
	"github.com/darmiel/realmbroker/internal/tasks"
)

func taskPath(route, name string) string {
	return strings.Replace(route, "{name}", url.PathEscape(name), 1)
}

// ListTasks returns the status of the server's maintenance tasks.
func (c *Client) ListTasks(ctx context.Context) ([]tasks.TaskStatus, string, error) {
	var res []tasks.TaskStatus
	correlation, err := c.get(ctx, c.url().setPath(api.ListTasksRoute).build(), &res)
	return res, correlation, err
}

// TriggerTask runs a task on the server. It returns before the task finishes.
func (c *Client) TriggerTask(ctx context.Context, name string) (string, error) {
	var res api.TriggerTaskResponse
	return c.postForm(ctx, c.url().setPath(taskPath(api.TriggerTaskRoute, name)).build(), url.Values{}, &res)
}

// GetTaskLogs returns the log of the last run of a task.
func (c *Client) GetTaskLogs(ctx context.Context, name string) ([]tasks.LogEntry, string, error) {
	var res []tasks.LogEntry
	correlation, err := c.get(ctx, c.url().setPath(taskPath(api.LogsForTaskRoute, name)).build(), &res)
	return res, correlation, err
}
