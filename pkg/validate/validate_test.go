package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/shopease/pkg/validate"
)

type registerInput struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type line struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"gte=1"`
}

type address struct {
	FullName string `json:"fullName" validate:"required"`
	City     string `json:"city"     validate:"required"`
}

type orderInput struct {
	Items           []line  `json:"items"           validate:"dive"`
	ShippingAddress address `json:"shippingAddress" validate:"dive"`
	PaymentMethod   string  `json:"paymentMethod"   validate:"required,in=credit,paypal,cash"`
}

type productPatch struct {
	Name  *string  `json:"name"  validate:"filled,max=20"`
	Price *float64 `json:"price" validate:"gte=0"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(registerInput{})
	if errs["name"] != "The name field is required." {
		t.Errorf("unexpected name error: %q", errs["name"])
	}
	if _, ok := errs["email"]; !ok {
		t.Error("expected email to be required")
	}
}

func TestEmailRule(t *testing.T) {
	errs := validate.Struct(registerInput{Name: "Jane", Email: "not-an-email", Password: "secret1"})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
}

func TestMinLength(t *testing.T) {
	errs := validate.Struct(registerInput{Name: "Jane", Email: "jane@example.com", Password: "abc"})
	if errs["password"] != "The password must be at least 6 characters." {
		t.Errorf("unexpected password error: %q", errs["password"])
	}
}

func TestInRule(t *testing.T) {
	errs := validate.Struct(orderInput{PaymentMethod: "bitcoin"})
	if errs["paymentMethod"] != "The selected paymentMethod is invalid." {
		t.Errorf("unexpected paymentMethod error: %q", errs["paymentMethod"])
	}
	errs = validate.Struct(orderInput{
		PaymentMethod:   "paypal",
		ShippingAddress: address{FullName: "Jane", City: "Oslo"},
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected paypal to pass: %v", errs)
	}
}

func TestDiveIntoSliceAndStruct(t *testing.T) {
	errs := validate.Struct(orderInput{
		Items:         []line{{ProductID: "p1", Quantity: 1}, {Quantity: 0}},
		PaymentMethod: "cash",
	})

	for _, key := range []string{"items.1.productId", "items.1.quantity", "shippingAddress.fullName", "shippingAddress.city"} {
		if _, ok := errs[key]; !ok {
			t.Errorf("expected error for %s, got: %v", key, errs)
		}
	}
	if _, ok := errs["items.0.productId"]; ok {
		t.Error("first line is valid")
	}
}

func TestPointerFieldsSkipWhenNil(t *testing.T) {
	if errs := validate.Struct(productPatch{}); validate.HasErrors(errs) {
		t.Errorf("expected nil pointers to pass: %v", errs)
	}

	neg := -1.0
	errs := validate.Struct(productPatch{Price: &neg})
	if _, ok := errs["price"]; !ok {
		t.Error("expected negative price to fail")
	}
}

func TestFilledRejectsBlankWhenPresent(t *testing.T) {
	blank := "   "
	errs := validate.Struct(productPatch{Name: &blank})
	if errs["name"] != "The name field must have a value." {
		t.Errorf("unexpected name error: %q", errs["name"])
	}

	name := "Widget"
	if errs := validate.Struct(productPatch{Name: &name}); validate.HasErrors(errs) {
		t.Errorf("expected non-blank name to pass: %v", errs)
	}
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		Image string `json:"image" validate:"nullable,url"`
	}
	if errs := validate.Struct(in{}); validate.HasErrors(errs) {
		t.Errorf("expected empty nullable to pass: %v", errs)
	}
	if errs := validate.Struct(in{Image: "not-a-url"}); !validate.HasErrors(errs) {
		t.Error("expected invalid URL to fail")
	}
}

func TestBetweenRule(t *testing.T) {
	type in struct {
		Rating float64 `json:"rating" validate:"between=0,5"`
	}
	if errs := validate.Struct(in{Rating: 6}); !validate.HasErrors(errs) {
		t.Error("expected rating > 5 to fail")
	}
	if errs := validate.Struct(in{Rating: 4.5}); validate.HasErrors(errs) {
		t.Errorf("expected 4.5 to pass: %v", errs)
	}
}

func TestSliceMin(t *testing.T) {
	type in struct {
		Tags []string `json:"tags" validate:"min=1"`
	}
	errs := validate.Struct(in{})
	if errs["tags"] != "The tags must be at least 1 items." {
		t.Errorf("unexpected tags error: %q", errs["tags"])
	}
}
