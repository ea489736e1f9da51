package interpolation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// InterpolateStruct applies environment variable interpolation to string fields tagged with
// `env_interpolation:"yes"`. The struct is modified in place; nested structs and pointers to
// structs are walked recursively. Interface types return an error - each concrete type should
// call this function on itself.
func InterpolateStruct(v any) error {
	if v == nil {
		return nil
	}

	val := reflect.ValueOf(v)

	if val.Kind() == reflect.Interface {
		return fmt.Errorf(
			"InterpolateStruct cannot handle interface types, call from concrete type instead",
		)
	}

	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("expected struct or pointer to struct, got %T", v)
	}

	typ := val.Type()
	var errs []error

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			tag := strings.ToLower(fieldType.Tag.Get("env_interpolation"))
			if tag != "yes" {
				continue
			}

			original := field.String()
			if original == "" {
				continue
			}

			interpolated, err := ExpandEnvVars(original)
			if err != nil {
				errs = append(errs, fmt.Errorf("field %s: %w", fieldType.Name, err))
				continue
			}
			field.SetString(interpolated)

		case reflect.Struct:
			if err := InterpolateStruct(field.Addr().Interface()); err != nil {
				errs = append(errs, fmt.Errorf("field %s: %w", fieldType.Name, err))
			}

		case reflect.Ptr:
			if field.Type().Elem().Kind() == reflect.Struct && !field.IsNil() {
				if err := InterpolateStruct(field.Interface()); err != nil {
					errs = append(errs, fmt.Errorf("field %s: %w", fieldType.Name, err))
				}
			}
		}
	}

	return errors.Join(errs...)
}
