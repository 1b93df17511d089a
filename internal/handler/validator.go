package handler

import (
    "errors"
    "net/http"
    "reflect"
    "strings"
    "unicode"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/store-rating/internal/model"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate.
type RequestValidator struct {
    v *validator.Validate
}

// NewValidator registers the custom tags used by the request DTOs:
//
//  password_policy  8-16 chars, at least one uppercase, at least one non-alphanumeric
//  role             ADMIN, OWNER or USER
func NewValidator() *RequestValidator {
    v := validator.New(validator.WithRequiredStructEnabled())
    // report json field names instead of Go field names
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        for _, tag := range []string{"json", "query", "param"} {
            name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
            if name != "" && name != "-" {
                return name
            }
        }
        return f.Name
    })
    _ = v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
        return PasswordPolicy(fl.Field().String())
    })
    _ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
        return model.Role(fl.Field().String()).Valid()
    })
    return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i any) error {
    return rv.v.Struct(i)
}

// PasswordPolicy reports whether pw is 8-16 characters long with at least
// one uppercase letter and one character that is neither letter nor digit.
func PasswordPolicy(pw string) bool {
    n := len([]rune(pw))
    if n < 8 || n > 16 {
        return false
    }
    var upper, special bool
    for _, r := range pw {
        switch {
        case unicode.IsUpper(r):
            upper = true
        case !unicode.IsLetter(r) && !unicode.IsDigit(r):
            special = true
        }
    }
    return upper && special
}

type fieldError struct {
    Field   string `json:"field"`
    Message string `json:"message"`
}

func describe(fe validator.FieldError) string {
    switch fe.Tag() {
    case "required":
        return "is required"
    case "email":
        return "must be a valid email"
    case "min":
        if fe.Kind() == reflect.String {
            return "must be at least " + fe.Param() + " characters"
        }
        return "must be at least " + fe.Param()
    case "max":
        if fe.Kind() == reflect.String {
            return "must be at most " + fe.Param() + " characters"
        }
        return "must be at most " + fe.Param()
    case "oneof":
        return "must be one of: " + fe.Param()
    case "password_policy":
        return "must be 8-16 characters with an uppercase letter and a special character"
    case "role":
        return "must be ADMIN, OWNER or USER"
    }
    return "is invalid"
}

// bindAndValidate binds the request into dst and runs the validator.  When
// ok is false the 400 response has already been written and the handler
// should return err as is.
func bindAndValidate(c echo.Context, dst any) (ok bool, err error) {
    if err := c.Bind(dst); err != nil {
        return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
    }
    if err := c.Validate(dst); err != nil {
        var verrs validator.ValidationErrors
        if !errors.As(err, &verrs) {
            return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
        }
        fields := make([]fieldError, 0, len(verrs))
        for _, fe := range verrs {
            fields = append(fields, fieldError{Field: fe.Field(), Message: describe(fe)})
        }
        return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
    }
    return true, nil
}
