package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/shortcode"
)

const (
	msgNotFound           = "Страница не найдена."
	msgForbidden          = "У вас недостаточно прав для выполнения данного действия."
	msgInvalidCredentials = "Невозможно войти с предоставленными учетными данными."
	msgBadRequest         = "Некорректный запрос."
	msgInternal           = "Internal Server Error"
)

// fieldErrors is the body of a 400 caused by invalid input
type fieldErrors map[string][]string

// respondError maps service errors to HTTP responses. Unexpected errors are
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	var domainErr *service.DomainError
	switch {
	case errors.As(err, &domainErr) && domainErr.Field != "":
		c.JSON(http.StatusBadRequest, fieldErrors{domainErr.Field: {domainErr.Message}})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": msgForbidden})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidCredentials})
	case errors.As(err, &domainErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": domainErr.Message})
	case errors.Is(err, service.ErrShoppingListSend):
		c.JSON(http.StatusInternalServerError, gin.H{"error": service.MsgShoppingListSendFail})
	case errors.Is(err, service.ErrShoppingListBuild):
		c.JSON(http.StatusInternalServerError, gin.H{"error": service.MsgShoppingListBuildFail})
	default:
		if errors.Is(err, shortcode.ErrShortCodeExhausted) {
			logging.Ctx(c.Request.Context()).Error().Err(err).Msg("short code space exhausted")
		} else {
			logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

// respondBindError turns binding failures into field errors where possible
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	body := fieldErrors{}
	for _, fe := range verrs {
		field := fe.Namespace()
		// drop the struct name prefix
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		body[field] = append(body[field], validationMessage(fe))
	}
	c.JSON(http.StatusBadRequest, body)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Обязательное поле."
	case "email":
		return "Введите правильный адрес электронной почты."
	case "username":
		return "Допустимы только буквы, цифры и символы @/./+/-/_."
	case "min":
		if isLengthCheck(fe) {
			return fmt.Sprintf("Минимальная длина: %s.", fe.Param())
		}
		return fmt.Sprintf("Значение должно быть не меньше %s.", fe.Param())
	case "max":
		if isLengthCheck(fe) {
			return fmt.Sprintf("Максимальная длина: %s.", fe.Param())
		}
		return fmt.Sprintf("Значение должно быть не больше %s.", fe.Param())
	default:
		return "Некорректное значение."
	}
}

func isLengthCheck(fe validator.FieldError) bool {
	switch fe.Kind() {
	case reflect.Slice, reflect.String, reflect.Map:
		return true
	}
	return false
}
