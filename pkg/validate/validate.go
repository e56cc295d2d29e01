// Package validate provides struct-tag validation for request payloads.
//
// Rules are comma-separated in the `validate` tag:
//
//	required            field must not be zero/empty (nil pointers fail)
//	nullable            if empty, skip all remaining rules for this field
//	filled              when present, must not be empty or only whitespace
//	email               valid email address
//	url                 valid URL (http/https)
//	uuid                valid UUID
//	numeric             any number
//	min=N / max=N       string: char length | slice: element count | number: value
//	gt=N gte=N lt=N lte=N
//	between=lo,hi       number or string length between lo and hi (inclusive)
//	in=a,b,c            value must be one of the listed items
//	not_in=a,b,c        value must NOT be one of the listed items
//	regex=pattern       value must match the regex (avoid commas in pattern)
//	dive                validate a nested struct, or every struct in a slice
//
// Pointer fields are dereferenced. A nil pointer only fails `required`, which
// makes pointer fields the natural shape for partial updates.
//
// Nested errors are keyed by path:
//
//	type Line struct {
//	    ProductID string `json:"productId" validate:"required"`
//	    Quantity  int    `json:"quantity"  validate:"gte=1"`
//	}
//	type Input struct {
//	    Items []Line `json:"items" validate:"required,dive"`
//	}
//	// → {"items.0.quantity": "The quantity must be greater than or equal to 1."}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of field path → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	walk(reflect.ValueOf(v), "", errs)
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func walk(rv reflect.Value, prefix string, errs map[string]string) {
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		path := prefix + name
		value := rv.Field(i)
		rules := splitRules(tag)

		if value.Kind() == reflect.Ptr {
			if value.IsNil() {
				if hasRule(rules, "required") {
					errs[path] = fmt.Sprintf("The %s field is required.", name)
				}
				continue
			}
			value = value.Elem()
		}

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		failed := false
		for _, rule := range rules {
			if rule == "nullable" || rule == "dive" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs[path] = msg
				failed = true
				break // first failing rule per field
			}
		}

		if !failed && hasRule(rules, "dive") {
			dive(value, path, errs)
		}
	}
}

func dive(v reflect.Value, path string, errs map[string]string) {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walk(v.Index(i), fmt.Sprintf("%s.%d.", path, i), errs)
		}
	case reflect.Struct:
		walk(v, path+".", errs)
	}
}

// ─── Rules ────────────────────────────────────────────────────────────────────

func applyRule(rule, field string, v reflect.Value) string {
	raw := fmt.Sprintf("%v", v.Interface())
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
	case "filled":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field must have a value.", field)
		}

	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "url":
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}
	case "uuid":
		if !uuidRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid UUID.", field)
		}
	case "numeric":
		if !isNumericKind(v) {
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				return fmt.Sprintf("The %s field must be a number.", field)
			}
		}

	case "min", "max":
		n := mustParseFloat(param)
		size, unit := measure(v)
		if key == "min" && size < n {
			return fmt.Sprintf("The %s must be at least %s%s.", field, param, unit)
		}
		if key == "max" && size > n {
			return fmt.Sprintf("The %s must not be greater than %s%s.", field, param, unit)
		}
	case "gt":
		if toFloat(v) <= mustParseFloat(param) {
			return fmt.Sprintf("The %s must be greater than %s.", field, param)
		}
	case "gte":
		if toFloat(v) < mustParseFloat(param) {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		}
	case "lt":
		if toFloat(v) >= mustParseFloat(param) {
			return fmt.Sprintf("The %s must be less than %s.", field, param)
		}
	case "lte":
		if toFloat(v) > mustParseFloat(param) {
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}
	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if ok {
			size, unit := measure(v)
			if size < mustParseFloat(lo) || size > mustParseFloat(hi) {
				return fmt.Sprintf("The %s must be between %s and %s%s.", field, lo, hi, unit)
			}
		}

	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "not_in":
		for _, f := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(f) {
				return fmt.Sprintf("The selected %s is invalid.", field)
			}
		}

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil {
			return fmt.Sprintf("The %s has an invalid validation pattern.", field)
		}
		if !re.MatchString(raw) {
			return fmt.Sprintf("The %s format is invalid.", field)
		}
	}

	return ""
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidRE  = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// measure returns the quantity that size rules compare against, plus the
// unit suffix used in messages.
func measure(v reflect.Value) (float64, string) {
	switch {
	case isNumericKind(v):
		return toFloat(v), ""
	case v.Kind() == reflect.Slice || v.Kind() == reflect.Array || v.Kind() == reflect.Map:
		return float64(v.Len()), " items"
	default:
		return float64(len([]rune(fmt.Sprintf("%v", v.Interface())))), " characters"
	}
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false // false is a valid boolean value, not empty
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprintf("%v", v.Interface()), 64)
	return f
}

func mustParseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name[:1]) + f.Name[1:]
	}
	return name
}

var ruleNames = map[string]bool{
	"required": true, "nullable": true, "email": true, "url": true, "uuid": true,
	"numeric": true, "min": true, "max": true, "gt": true, "gte": true, "lt": true,
	"lte": true, "between": true, "in": true, "not_in": true, "regex": true, "dive": true,
}

// splitRules splits the tag on commas and re-joins tokens that continue a
// multi-value parameter: "required,in=a,b,max=3" → [required in=a,b max=3].
func splitRules(tag string) []string {
	var rules []string
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		name, _, _ := strings.Cut(tok, "=")
		if len(rules) > 0 && !ruleNames[name] {
			last := rules[len(rules)-1]
			if strings.HasPrefix(last, "in=") || strings.HasPrefix(last, "not_in=") || strings.HasPrefix(last, "between=") {
				rules[len(rules)-1] = last + "," + tok
				continue
			}
		}
		rules = append(rules, tok)
	}
	return rules
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}
