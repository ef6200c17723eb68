package response

import "github.com/gin-gonic/gin"

// ErrorBody is the "error" member of a failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the shape of every JSON body the API writes.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func NewPagination(page, perPage int, total int64) Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Envelope{Success: true, Data: data})
}

// Paginated writes a list payload with its pagination block.
func Paginated(c *gin.Context, items any, p Pagination) {
	Success(c, 200, gin.H{
		"items":      items,
		"pagination": p,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, Envelope{Error: &ErrorBody{Code: code, Message: message}})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, Envelope{Error: &ErrorBody{Code: code, Message: message, Details: details}})
}

// Abort writes an error and stops the handler chain.
func Abort(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}
