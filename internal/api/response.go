package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fast-order/internal/apperror"
	"fast-order/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type successBody struct {
	Data       interface{} `json:"data"`
	HasError   bool        `json:"hasError"`
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Timestamp  time.Time   `json:"timestamp"`
}

type errorBody struct {
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode"`
	HasError   bool      `json:"hasError"`
	Reasons    []string  `json:"reasons"`
	Timestamp  time.Time `json:"timestamp"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, successBody{
		Data:       data,
		Message:    message,
		StatusCode: status,
		Timestamp:  time.Now().UTC(),
	})
}

// fail renders err as an error body. Causes of server-side faults are logged,
// never rendered.
func fail(c *gin.Context, err error) {
	appErr := apperror.From(err)
	status := apperror.HTTPStatus(appErr)

	if status >= http.StatusInternalServerError {
		util.GetLogger().Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("kind", string(appErr.Kind)),
			zap.Error(err))
	}

	reasons := []string{appErr.Message}
	if appErr.Reason != apperror.ReasonNone {
		reasons = append(reasons, string(appErr.Reason))
	}

	c.AbortWithStatusJSON(status, errorBody{
		Title:      appErr.Title,
		Message:    appErr.Message,
		StatusCode: status,
		HasError:   true,
		Reasons:    reasons,
		Timestamp:  time.Now().UTC(),
	})
}

// failBinding renders a request body that could not be decoded or validated.
func failBinding(c *gin.Context, err error) {
	reasons := []string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			reasons = append(reasons, fmt.Sprintf("%s: failed on '%s'", fe.Field(), fe.Tag()))
		}
	} else {
		reasons = append(reasons, err.Error())
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{
		Title:      "Invalid data",
		Message:    "The request body is invalid.",
		StatusCode: http.StatusBadRequest,
		HasError:   true,
		Reasons:    reasons,
		Timestamp:  time.Now().UTC(),
	})
}
