package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal-api/internal/middleware"
	"github.com/noah-isme/internship-portal-api/internal/models"
	"github.com/noah-isme/internship-portal-api/internal/service"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
	"github.com/noah-isme/internship-portal-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

var payloadValidator = service.NewValidator()

// bindJSON decodes the body and renders a 400 on failure.
func bindJSON(c *gin.Context, dst interface{}, subject string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+subject+" payload"))
		return false
	}
	return true
}

// bindValid is bindJSON followed by the payload's validate tags.
func bindValid(c *gin.Context, dst interface{}, subject string) bool {
	if !bindJSON(c, dst, subject) {
		return false
	}
	if err := service.ValidatePayload(payloadValidator, dst, subject); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}

func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || size < 1 {
		size = 20
	}
	return page, size
}

func boolQuery(c *gin.Context, key string) *bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

func respond(c *gin.Context, status int, data interface{}, pagination *response.Pagination) {
	response.JSON(c, status, data, pagination, middleware.ExtractMeta(c))
}

func respondDeleted(c *gin.Context, id string) {
	respond(c, http.StatusOK, gin.H{"id": id, "deleted": true}, nil)
}
