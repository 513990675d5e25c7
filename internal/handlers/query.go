package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
)

const dateLayout = "2006-01-02"

// queryError renders like a binding failure on a single query field.
type queryError struct {
	field string
	msg   string
}

func (e *queryError) Error() string { return e.field + ": " + e.msg }

func respondQueryError(c *gin.Context, err *queryError) {
	attachError(c, err)
	c.JSON(422, gin.H{"detail": []ValidationError{{
		Loc:  []string{"query", err.field},
		Msg:  err.msg,
		Type: "type_error",
	}}})
}

// bindPage reads skip and limit.
func bindPage(c *gin.Context) (models.Page, bool) {
	var page models.Page
	if !bindQuery(c, &page) {
		return page, false
	}
	return page.Normalize(), true
}

// queryDate parses an optional YYYY-MM-DD parameter.
func queryDate(c *gin.Context, name string) (*time.Time, *queryError) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, &queryError{field: name, msg: "invalid date format, expected YYYY-MM-DD"}
	}
	return &t, nil
}

// queryBool parses an optional boolean parameter.
func queryBool(c *gin.Context, name string) (*bool, *queryError) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &queryError{field: name, msg: fmt.Sprintf("value could not be parsed to a boolean: %q", raw)}
	}
	return &v, nil
}
