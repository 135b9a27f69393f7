package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/dalemusser/projectflow/internal/app/system/auth"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// checkStruct runs the struct tags of v and turns the first failure into a
// ValidationError.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return validationf("invalid input")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return validationf("%s is required", fe.Field())
	case "oneof":
		return validationf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return validationf("%s must be a valid email address", fe.Field())
	case "min":
		return validationf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return validationf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return validationf("%s is invalid", fe.Field())
	}
}

// parseID parses a hex ObjectID supplied in a request body.
func parseID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, validationf("%s is not a valid id", field)
	}
	return id, nil
}

// parseOptionalID is parseID for fields where "" means absent.
func parseOptionalID(field, hex string) (*primitive.ObjectID, error) {
	if strings.TrimSpace(hex) == "" {
		return nil, nil
	}
	id, err := parseID(field, hex)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parsePathID parses an id taken from the URL. A malformed id cannot name
// anything, so it reads as not found.
func parsePathID(entity, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, notFound(entity)
	}
	return id, nil
}

func parseIDList(field string, hexes []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexes))
	seen := make(map[primitive.ObjectID]bool, len(hexes))
	for _, h := range hexes {
		id, err := parseID(field, h)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// parseDate accepts RFC 3339 timestamps and the bare dates HTML date inputs
// produce.
func parseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, validationf("%s must be a date (YYYY-MM-DD or RFC 3339)", field)
}

func nonNegative(field string, v *float64) error {
	if v != nil && *v < 0 {
		return validationf("%s must be at least 0", field)
	}
	return nil
}

func progressInRange(v *int) error {
	if v != nil && (*v < 0 || *v > 100) {
		return validationf("progress must be between 0 and 100")
	}
	return nil
}

// callerOr returns the id in hex when set, else the authenticated caller.
// ok is false when neither is available.
func callerOr(ctx context.Context, field, hex string) (primitive.ObjectID, bool, error) {
	if strings.TrimSpace(hex) != "" {
		id, err := parseID(field, hex)
		return id, err == nil, err
	}
	if u, ok := auth.UserFromContext(ctx); ok {
		return u.ID, true, nil
	}
	return primitive.NilObjectID, false, nil
}

func requireCaller(ctx context.Context, field, hex string) (primitive.ObjectID, error) {
	id, ok, err := callerOr(ctx, field, hex)
	if err != nil {
		return id, err
	}
	if !ok {
		return id, validationf("%s is required", field)
	}
	return id, nil
}

