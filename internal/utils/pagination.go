package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/selimcan/tasktracker/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// GetPaginationParams extracts and validates pagination parameters from the
// request. defaultPageSize comes from configuration.
func GetPaginationParams(c *gin.Context, defaultPageSize int) PaginationParams {
	if defaultPageSize <= 0 || defaultPageSize > constants.MaxPageSize {
		defaultPageSize = constants.DefaultPageSize
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPage)))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))

	if page < constants.MinPage {
		page = constants.MinPage
	}
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		pageSize = defaultPageSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

// PageLinks builds the next/previous links for the current request by
// swapping the page query parameter, nil at either edge.
func PageLinks(c *gin.Context, params PaginationParams, total int64) (next, previous *string) {
	if int64(params.Page*params.PageSize) < total {
		next = pageURL(c, params.Page+1)
	}
	if params.Page > constants.MinPage {
		previous = pageURL(c, params.Page-1)
	}
	return next, previous
}

func pageURL(c *gin.Context, page int) *string {
	u := *c.Request.URL
	query := u.Query()
	query.Set("page", strconv.Itoa(page))
	u.RawQuery = query.Encode()
	s := u.String()
	return &s
}
