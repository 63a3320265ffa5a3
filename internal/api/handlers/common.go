package handlers

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type APIError struct {
	Code    utils.Code         `json:"code"`
	Message string             `json:"message"`
	Errors  []utils.FieldError `json:"errors,omitempty"`
}

type msgResponse struct {
	Msg string `json:"msg"`
}

// writeError is the single place errors become HTTP responses. Internal
// details are attached to the gin context for the request logger only.
func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) && status < http.StatusInternalServerError {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
			Errors:  ae.Fields,
		})
		return
	}

	_ = c.Error(err)
	code := utils.CodeInternal
	msg := "Server error"
	if ae != nil && ae.Code == utils.CodeUnavailable {
		code, msg = ae.Code, ae.Message
	}
	c.JSON(status, APIError{Code: code, Message: msg})
}

func requireUserID(c *gin.Context) (string, bool) {
	if v, ok := c.Get("user_id"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}

	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "No token, authorization denied", nil))
	return "", false
}

// bindJSON binds and validates the body into req. Violations are reported per
// field using the struct's json name and its msg tag, or msg_<rule> when the
// failed rule has its own message.
func bindJSON(c *gin.Context, op string, req any) bool {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		// an empty body is validated as an empty object
		err = binding.Validator.ValidateStruct(req)
	}
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		writeError(c, utils.Invalid(op, fieldErrors(req, verrs)...))
		return false
	}
	writeError(c, utils.Invalid(op, utils.FieldError{Field: "body", Msg: "Invalid JSON body"}))
	return false
}

func fieldErrors(req any, verrs validator.ValidationErrors) []utils.FieldError {
	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	out := make([]utils.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name, msg := fe.Field(), ""
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if j := strings.Split(sf.Tag.Get("json"), ",")[0]; j != "" && j != "-" {
				name = j
			}
			if msg = sf.Tag.Get("msg_" + fe.Tag()); msg == "" {
				msg = sf.Tag.Get("msg")
			}
		}
		if msg == "" {
			msg = name + " is invalid"
		}
		out = append(out, utils.FieldError{Field: name, Msg: msg})
	}
	return out
}
