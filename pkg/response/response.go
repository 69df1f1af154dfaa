package response

import (
	"encoding/json"
	"io"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type ErrorBody struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta derives the page count from total and limit
func NewMeta(page, limit int, total int64) *Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

func JSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func Success(w io.Writer, message string, data interface{}) error {
	return JSON(w, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SuccessWithMeta(w io.Writer, message string, data interface{}, meta *Meta) error {
	return JSON(w, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

func Error(w io.Writer, kind, message string) error {
	return JSON(w, Response{
		Success: false,
		Error:   &ErrorBody{Kind: kind, Message: message},
	})
}

func ValidationError(w io.Writer, fields map[string]string) error {
	return JSON(w, Response{
		Success: false,
		Error: &ErrorBody{
			Kind:    "Validation",
			Message: "Validation failed",
			Fields:  fields,
		},
	})
}
