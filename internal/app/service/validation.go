package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^[+]?[\d\s()-]{10,}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// fieldMessages maps "<jsonField>.<tag>" to the message shown for that failure
type fieldMessages map[string]string

var formMessages = fieldMessages{
	"companyName.required":    "Company name must be at least 2 characters",
	"companyName.min":         "Company name must be at least 2 characters",
	"email.required":          "Invalid email address",
	"email.email":             "Invalid email address",
	"password.required":       "Password must be at least 6 characters",
	"password.min":            "Password must be at least 6 characters",
	"website.url":             "Invalid URL",
	"brandLogo.url":           "Invalid URL",
	"contactNumber.required":  "Invalid phone number",
	"contactNumber.phone":     "Invalid phone number",
	"address.required":        "Address must be at least 10 characters",
	"address.min":             "Address must be at least 10 characters",
	"slaDays.min":             "SLA days must be between 1 and 30",
	"slaDays.max":             "SLA days must be between 1 and 30",
	"fullName.required":       "Name must be at least 2 characters",
	"fullName.min":            "Name must be at least 2 characters",
	"mobile.required":         "Invalid phone number",
	"mobile.phone":            "Invalid phone number",
	"degreeName.required":     "Degree name is required",
	"degreeName.min":          "Degree name is required",
	"universityName.required": "University name is required",
	"universityName.min":      "University name is required",
	"graduationYear.min":      "Graduation year is out of range",
	"graduationYear.max":      "Graduation year is out of range",
	"candidateId.required":    "Candidate is required",
}

// validateInput runs struct validation and converts failures into a ValidationError
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out.Fields[field]; seen {
			continue
		}
		if msg, ok := formMessages[field+"."+fe.Tag()]; ok {
			out.Fields[field] = msg
			continue
		}
		out.Fields[field] = fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
	return out
}
