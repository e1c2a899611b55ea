package api

import (
	"encoding/json"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/mitchellh/mapstructure"
)

const (
	Success string = "success" //The request ended successfully
	Error   string = "error"   //The request ended with error - check the message field
)

// GenericRequest is the {"data": {...}} envelope every write endpoint accepts.
type GenericRequest struct {
	Data map[string]interface{} `json:"data"`
}

func NewGenericResponse(status string, message string, data interface{}) gin.H {
	return gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	}
}

func NewErrorResponse(message string) gin.H {
	return gin.H{
		"status":  Error,
		"message": message,
		"data":    gin.H{},
	}
}

func NewErrorResponsef(format string, a ...interface{}) gin.H {
	return gin.H{
		"status":  Error,
		"message": fmt.Sprintf(format, a...),
		"data":    gin.H{},
	}
}

// NewValidationErrorResponse carries the per-field messages of a failed validation in data.
func NewValidationErrorResponse(message string, fields error) gin.H {
	return gin.H{
		"status":  Error,
		"message": message,
		"data":    fields,
	}
}

// DecodeDataTo decodes the data map into output, matching keys case-insensitively to field names.
// Fields of output that are pointers stay nil when the key is absent, which lets callers tell
// "not sent" apart from a zero value.
func (genericRequest *GenericRequest) DecodeDataTo(output interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(genericRequest.Data)
}

func (genericRequest *GenericRequest) Load(input []byte) error {
	err := json.Unmarshal(input, &genericRequest)
	if err != nil {
		return err
	}
	return nil
}

type RestJsonRequest struct {
	Data interface{} `json:"data"`
}

type RestJsonResponse struct {
	Status  string      `json:"status" example:"success"`
	Message string      `json:"message" example:"The request was sent successfully"`
	Data    interface{} `json:"data"`
}

type RestJsonErrorResponse struct {
	Status  string      `json:"status" example:"error"`
	Message string      `json:"message" example:"article not found"`
	Data    interface{} `json:"data"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ScriptResponse and ScriptErrorResponse are the flat shapes the page scripts expect
// from the view counter, sitemap and admin check endpoints.
type ScriptResponse struct {
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

type ScriptErrorResponse struct {
	Error string `json:"error"`
}
