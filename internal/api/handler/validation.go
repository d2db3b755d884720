package handler

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"school-health/internal/model"
	"school-health/internal/service"
)

// RegisterValidators 注册自定义 binding 标签：school_year、school_level
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("binding 引擎不是 validator.Validate")
	}
	if err := v.RegisterValidation("school_year", func(fl validator.FieldLevel) bool {
		return service.ValidYear(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("school_level", func(fl validator.FieldLevel) bool {
		return model.SchoolLevel(fl.Field().String()).Valid()
	})
}

// invalidField binding 标签校验失败时返回第一个出错的字段名；JSON 格式错误返回空串
func invalidField(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return ve[0].StructField()
	}
	return ""
}
