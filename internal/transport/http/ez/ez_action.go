package ez

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"gin-gorm-auth/internal/domain"
	resp "gin-gorm-auth/internal/transport/http/response"
)

// KeyUserID 鉴权中间件写入的当前用户 ID
const KeyUserID = "userId"

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON Binder = "json" // 从 JSON 绑定
	BindNone Binder = "none" // 不绑定
)

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST"
	Path    string
	Binder  Binder
	Auth    bool // 要求 KeyUserID 已写入
	Status  int  // 成功状态码，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		if a.Auth && c.GetString(KeyUserID) == "" {
			resp.Abort(c, resp.CodeUnauthorized, "")
			return
		}

		var in I
		if a.Binder == BindJSON {
			if err := c.ShouldBindJSON(&in); err != nil {
				WriteBindError(c, err)
				return
			}
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			WriteError(c, err)
			return
		}
		c.JSON(status, resp.OK(out))
	}

	if strings.EqualFold(a.Method, http.MethodGet) {
		e.g.GET(a.Path, h)
		return
	}
	e.g.POST(a.Path, h)
}

// WriteError 业务错误按 code 映射；未知错误记入 c.Errors，对外只给 INTERNAL_ERROR
func WriteError(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		code := string(de.Code)
		var details []resp.ErrorDetail
		if de.Field != "" {
			details = append(details, resp.ErrorDetail{Field: de.Field, Message: de.Message})
		}
		c.JSON(resp.StatusOf(code), resp.Error(code, de.Message, details...))
		return
	}

	_ = c.Error(err)
	if errors.Is(err, context.DeadlineExceeded) {
		c.JSON(resp.StatusOf(resp.CodeTimeout), resp.Error(resp.CodeTimeout, ""))
		return
	}
	c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeInternal, ""))
}

// WriteBindError 绑定 / 校验失败
func WriteBindError(c *gin.Context, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		c.JSON(resp.StatusOf(resp.CodeRequestTooLarge), resp.Error(resp.CodeRequestTooLarge, ""))
		return
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make([]resp.ErrorDetail, 0, len(ve))
		for _, fe := range ve {
			details = append(details, resp.ErrorDetail{Field: fe.Field(), Message: FieldMessage(fe)})
		}
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeValidation, "", details...))
		return
	}

	var (
		se *json.SyntaxError
		te *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &te):
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeValidation, "",
			resp.ErrorDetail{Field: te.Field, Message: te.Field + " has the wrong type"}))
	case errors.As(err, &se), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeValidation, "malformed request body"))
	default:
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeValidation, err.Error()))
	}
}

// FieldMessage 校验失败的人类可读说明
func FieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
	case "password":
		return f + " must contain at least one letter and one digit"
	}
	return f + " is invalid"
}
