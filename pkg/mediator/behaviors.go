package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

// RuleValidator is implemented by requests with rules struct tags cannot express.
// Returned failures are merged with tag failures.
type RuleValidator interface {
	Rules() []apperrors.FieldError
}

// Logging records every request with its duration and outcome
func Logging(logger zerolog.Logger) Behavior {
	return func(ctx context.Context, req any, next HandlerFunc) (any, error) {
		name := RequestName(req)
		start := time.Now()

		logger.Debug().Str("request", name).Msg("handling request")
		res, err := next(ctx, req)
		latency := time.Since(start)

		if err != nil {
			appErr := apperrors.From(err)
			event := logger.Warn()
			if appErr.Code == apperrors.ErrInternal {
				event = logger.Error()
			}
			var pe *PanicError
			if errors.As(err, &pe) {
				event = event.Str("stack", string(pe.Stack))
			}
			event.Err(err).
				Str("request", name).
				Int("code", int(appErr.Code)).
				Dur("latency", latency).
				Msg("request failed")
			return res, err
		}

		logger.Info().Str("request", name).Dur("latency", latency).Msg("request handled")
		return res, nil
	}
}

// Metrics counts requests by type and outcome and observes their latency
func Metrics(reg prometheus.Registerer, namespace string) Behavior {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mediator_requests_total",
		Help:      "Total number of mediator requests",
	}, []string{"request", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mediator_request_duration_seconds",
		Help:      "Duration of mediator requests in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"request"})
	reg.MustRegister(total, duration)

	return func(ctx context.Context, req any, next HandlerFunc) (any, error) {
		name := RequestName(req)
		timer := prometheus.NewTimer(duration.WithLabelValues(name))
		defer timer.ObserveDuration()

		res, err := next(ctx, req)
		outcome := "success"
		if err != nil {
			outcome = strings.ToLower(codeName(apperrors.From(err).Code))
		}
		total.WithLabelValues(name, outcome).Inc()
		return res, err
	}
}

// PanicError carries a recovered panic value and the stack it was raised on
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Recovery turns panics and untyped errors into a generic internal failure. It does not
// log; Logging reports the failure with its cause and, for panics, the stack.
func Recovery() Behavior {
	return func(ctx context.Context, req any, next HandlerFunc) (res any, err error) {
		defer func() {
			if p := recover(); p != nil {
				res, err = nil, apperrors.Internal(&PanicError{Value: p, Stack: debug.Stack()})
			}
		}()

		res, err = next(ctx, req)
		if err != nil {
			if _, typed := apperrors.As(err); !typed {
				err = apperrors.Internal(err)
			}
		}
		return res, err
	}
}

// Validation checks struct tags and request rules, collecting every failure before
// short-circuiting
func Validation(v *validator.Validate) Behavior {
	return func(ctx context.Context, req any, next HandlerFunc) (any, error) {
		var fields []apperrors.FieldError

		if isStruct(req) {
			if err := v.StructCtx(ctx, req); err != nil {
				verrs, ok := err.(validator.ValidationErrors)
				if !ok {
					return nil, apperrors.Internal(err)
				}
				for _, fe := range verrs {
					fields = append(fields, apperrors.FieldError{
						Field:   fe.Field(),
						Message: fieldMessage(fe),
					})
				}
			}
		}

		if rv, ok := req.(RuleValidator); ok {
			fields = append(fields, rv.Rules()...)
		}

		if len(fields) > 0 {
			return nil, apperrors.Validation(fields)
		}
		return next(ctx, req)
	}
}

// NewValidator returns a validator reporting json field names
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func isStruct(req any) bool {
	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func codeName(code apperrors.ErrorCode) string {
	switch code {
	case apperrors.ErrNotFound:
		return "not_found"
	case apperrors.ErrBadRequest:
		return "bad_request"
	case apperrors.ErrUnauthorized:
		return "unauthorized"
	case apperrors.ErrForbidden:
		return "forbidden"
	case apperrors.ErrValidation:
		return "validation"
	case apperrors.ErrConflict:
		return "conflict"
	case apperrors.ErrBusinessRule:
		return "business_rule"
	default:
		return "internal"
	}
}
