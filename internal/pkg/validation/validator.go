package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	ruTranslations "github.com/go-playground/validator/v10/translations/ru"
)

// FormField is the key used for errors that cannot be attributed to a single
// field, such as a value that does not parse as a number.
const FormField = "form"

var notBlankMessages = map[string]string{
	"ru": "{0} не может состоять только из пробелов",
	"en": "{0} must not be blank",
}

var malformedFormMessages = map[string]string{
	"ru": "Форма содержит некорректные значения",
	"en": "The form contains malformed values",
}

// FieldErrors maps a form field name to its translated error message.
type FieldErrors map[string]string

// HasErrors reports whether any field failed validation.
func (e FieldErrors) HasErrors() bool {
	return len(e) > 0
}

// FormValidator binds form posts into DTOs and validates them against their
// `validate` tags. It holds no per-request state and is safe for concurrent use.
type FormValidator struct {
	validate  *validator.Validate
	trans     ut.Translator
	malformed string
}

// NewFormValidator builds a validator whose messages are in the given
// locale ("ru" or "en").
func NewFormValidator(locale string) (*FormValidator, error) {
	locale = strings.ToLower(locale)

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, ru.New())
	trans, found := uni.GetTranslator(locale)
	if !found {
		return nil, fmt.Errorf("no translator for locale %q", locale)
	}

	var err error
	switch locale {
	case "ru":
		err = ruTranslations.RegisterDefaultTranslations(v, trans)
	default:
		err = enTranslations.RegisterDefaultTranslations(v, trans)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register %s translations: %w", locale, err)
	}

	if err := registerNotBlank(v, trans, locale); err != nil {
		return nil, err
	}

	malformed, ok := malformedFormMessages[locale]
	if !ok {
		malformed = malformedFormMessages["en"]
	}

	return &FormValidator{validate: v, trans: trans, malformed: malformed}, nil
}

// registerNotBlank adds the "notblank" rule, which rejects whitespace-only
// strings that "required" lets through.
func registerNotBlank(v *validator.Validate, trans ut.Translator, locale string) error {
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return fmt.Errorf("failed to register notblank: %w", err)
	}
	msg, ok := notBlankMessages[locale]
	if !ok {
		msg = notBlankMessages["en"]
	}
	err := v.RegisterTranslation("notblank", trans,
		func(ut ut.Translator) error {
			return ut.Add("notblank", msg, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("notblank", fe.Field())
			return t
		},
	)
	if err != nil {
		return fmt.Errorf("failed to register notblank translation: %w", err)
	}
	return nil
}

// Validate checks obj against its constraints. It returns nil when obj is valid.
func (v *FormValidator) Validate(obj interface{}) FieldErrors {
	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{FormField: v.malformed}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fe.Translate(v.trans)
	}
	return out
}

// Bind maps the submitted form into obj, trims its string fields and
// validates it. Length rules therefore apply to what will be stored. Whatever
// could be mapped stays in obj, so the caller can redisplay it next to the
// errors.
func (v *FormValidator) Bind(c *gin.Context, obj interface{}) FieldErrors {
	err := c.ShouldBindWith(obj, binding.Form)
	trimStrings(obj)
	if err != nil {
		errs := v.Validate(obj)
		if errs == nil {
			errs = FieldErrors{}
		}
		errs[FormField] = v.malformed
		return errs
	}
	return v.Validate(obj)
}

// trimStrings strips surrounding whitespace from every settable string field
// of the struct obj points to.
func trimStrings(obj interface{}) {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

// FormValues returns the raw submitted values exactly as the user typed them.
func FormValues(c *gin.Context) url.Values {
	if c.Request == nil {
		return url.Values{}
	}
	if c.Request.PostForm == nil {
		_ = c.Request.ParseForm()
	}
	if c.Request.PostForm == nil {
		return url.Values{}
	}
	return c.Request.PostForm
}
