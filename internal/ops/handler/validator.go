package handler

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators 在gin的validator上注册枚举校验：doctype、tasktype
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		if err := v.RegisterValidation("doctype", validateDocumentType); err != nil {
			registerErr = err
			return
		}
		registerErr = v.RegisterValidation("tasktype", validateTaskType)
	})
	return registerErr
}

func validateDocumentType(fl validator.FieldLevel) bool {
	return entity.DocumentType(fl.Field().String()).Valid()
}

func validateTaskType(fl validator.FieldLevel) bool {
	return entity.TaskType(fl.Field().String()).Valid()
}

// bindingMessage 把校验错误转成可读信息
func bindingMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return "invalid request body: " + err.Error()
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		switch fe.Tag() {
		case "doctype":
			msgs = append(msgs, fmt.Sprintf("%s must be one of dashboard, plan", fe.Field()))
		case "tasktype":
			msgs = append(msgs, fmt.Sprintf("%s must be one of regular, irregular", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
