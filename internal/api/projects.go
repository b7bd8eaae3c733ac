package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/reslab-bio/omics-console/internal/models"
)

type projectPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListProjects fetches the full project list, newest first.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.getJSON(ctx, "/projects/", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject registers a new project and returns the created record.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	var created models.Project
	err := c.sendJSON(ctx, http.MethodPost, "/projects/", projectPayload{Name: name, Description: description}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProject patches name and description on an existing project.
func (c *Client) UpdateProject(ctx context.Context, id int64, name, description string) (*models.Project, error) {
	var updated models.Project
	path := fmt.Sprintf("/projects/%d/", id)
	err := c.sendJSON(ctx, http.MethodPatch, path, projectPayload{Name: name, Description: description}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProject soft-deletes a project (moves it to trash).
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d/", id), nil, nil)
}

// ProjectTrash lists soft-deleted projects.
func (c *Client) ProjectTrash(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.getJSON(ctx, "/projects/trash/", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// RestoreProject brings a soft-deleted project back.
func (c *Client) RestoreProject(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/restore/", id), nil, nil)
}
