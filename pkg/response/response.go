// Package response writes Django REST framework style payloads: resources
// are emitted bare (an object or a plain array, no envelope) and failures
// use the {"detail": "..."} shape clients already parse.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

// JSON sends a bare payload.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusCreated, payload)
}

// Detail sends a {"detail": message} body with the given status.
func Detail(c *gin.Context, status int, message string) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, gin.H{"detail": message})
}

// Error maps an error onto a status code and detail body.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	status := appErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	Detail(c, status, appErr.Message)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
