package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

// clock is replaced in tests.
var clock = time.Now

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// reportPeriod reads ?year and ?month. Year defaults to the current year; month is required.
func reportPeriod(c *gin.Context) (int, time.Month, error) {
	year := clock().Year()
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, appErrors.Clone(appErrors.ErrValidation, "year must be a number")
		}
		year = parsed
	}
	raw := strings.TrimSpace(c.Query("month"))
	if raw == "" {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "month is required")
	}
	month, err := strconv.Atoi(raw)
	if err != nil {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "month must be a number")
	}
	return year, time.Month(month), nil
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return page, size
}
