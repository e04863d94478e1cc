package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs tag validation and returns user-facing messages,
// one per failing field. Empty result means the struct is valid.
func ValidateStruct(s interface{}) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	var messages []string
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", toSnakeCase(fe.Field())))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", toSnakeCase(fe.Field()), fe.Tag()))
		}
	}
	return messages
}

func toSnakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
