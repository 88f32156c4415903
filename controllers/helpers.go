package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"hiking-backend/middleware"
	"hiking-backend/utils"
)

// ---------------------------
// Helpers shared by every controller
// ---------------------------

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, utils.NotFound("resource not found")
	}
	return uint(v), nil
}

// bindError turns a gin binding failure into a field-level validation error.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[strings.ToLower(fe.Field())] = describeTag(fe)
		}
		return utils.Validation("invalid payload", details)
	}
	return utils.Validation("invalid payload", err.Error())
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "enter a valid email address"
	default:
		return "invalid value"
	}
}

// requireUser returns the authenticated caller. Routes behind AuthRequired always have one.
func requireUser(c *gin.Context) (uint, error) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		return 0, utils.Unauthorized("Authentication credentials were not provided.")
	}
	return id, nil
}

func pagination(c *gin.Context) utils.Pagination {
	return utils.ParsePagination(c.Query("page"), c.Query("page_size"))
}

func page(p utils.Pagination, total int64, results interface{}) utils.Page {
	return utils.Page{Count: total, Page: p.Page, PageSize: p.PageSize, Results: results}
}
