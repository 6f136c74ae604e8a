package api

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ListPaketRequest is the validated form of a /listpaket query.
type ListPaketRequest struct {
	Module   string `validate:"required,max=64"`
	Endpoint string `validate:"required,max=256"`
	TrxID    string `validate:"required,alphanum,max=64"`
	To       string `validate:"required,digits,max=32"`
	Category string `validate:"omitempty,max=64"`

	// Forward holds every query parameter except mod; it is sent upstream
	// unchanged.
	Forward url.Values `validate:"-"`
}

// Query parameter names.
const (
	ParamModule   = "mod"
	ParamEndpoint = "end"
	ParamTrxID    = "trxid"
	ParamTo       = "to"
	ParamCategory = "category"
)

var fieldParams = map[string]string{
	"Module":   ParamModule,
	"Endpoint": ParamEndpoint,
	"TrxID":    ParamTrxID,
	"To":       ParamTo,
	"Category": ParamCategory,
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("digits", validateDigits); err != nil {
		panic(fmt.Sprintf("api: register digits validator: %v", err))
	}
	return v
}

func validateDigits(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseListPaket builds the request from q. Values are trimmed.
func parseListPaket(q url.Values) ListPaketRequest {
	get := func(k string) string { return strings.TrimSpace(q.Get(k)) }

	fwd := url.Values{}
	for k, vs := range q {
		if k == ParamModule {
			continue
		}
		fwd[k] = append([]string(nil), vs...)
	}
	return ListPaketRequest{
		Module:   get(ParamModule),
		Endpoint: get(ParamEndpoint),
		TrxID:    get(ParamTrxID),
		To:       get(ParamTo),
		Category: get(ParamCategory),
		Forward:  fwd,
	}
}

// validationMessage renders validator errors as one line naming the query
// parameters.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		param := fieldParams[fe.Field()]
		if param == "" {
			param = strings.ToLower(fe.Field())
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, param+" is required")
		case "alphanum":
			msgs = append(msgs, param+" must be alphanumeric")
		case "digits":
			msgs = append(msgs, param+" must contain digits only")
		case "max":
			msgs = append(msgs, param+" is longer than "+fe.Param())
		default:
			msgs = append(msgs, param+" failed "+fe.Tag())
		}
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}
