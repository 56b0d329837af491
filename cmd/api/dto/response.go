package dto

import "roast-board/models"

// ErrorResponseDTO is the shared error body.
type ErrorResponseDTO struct {
	Error  string              `json:"error" example:"not_found"`
	Detail string              `json:"detail,omitempty" example:"roast P1-2025-11-abc: not found"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

type MessageResponseDTO struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponseDTO struct {
	Status string `json:"status" example:"ok"`
	Store  string `json:"store" example:"up"`
	Error  string `json:"error,omitempty"`
}
