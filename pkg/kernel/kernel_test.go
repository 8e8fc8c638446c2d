package kernel

import (
	"context"
	"testing"
)

func TestOperatorContext_HasScope(t *testing.T) {
	oc := &OperatorContext{Scopes: []string{"seo:*", "reports:read"}}

	if !oc.HasScope("seo:jobs") {
		t.Error("wildcard seo:* should grant seo:jobs")
	}
	if oc.HasScope("seojobs") {
		t.Error("prefix match must stop at the colon")
	}
	if !oc.HasAnyScope("admin:*", "reports:read") {
		t.Error("expected reports:read to match")
	}

	root := &OperatorContext{Scopes: []string{"*"}}
	if !root.HasScope("anything") {
		t.Error("* grants everything")
	}
}

func TestOperatorFromContext(t *testing.T) {
	if _, ok := OperatorFrom(context.Background()); ok {
		t.Fatal("empty context has no operator")
	}
	ctx := WithOperator(context.Background(), &OperatorContext{OperatorID: "op-1"})
	oc, ok := OperatorFrom(ctx)
	if !ok || oc.OperatorID != "op-1" {
		t.Fatalf("expected op-1, got %+v", oc)
	}
}

func TestOperatorID(t *testing.T) {
	if !NewOperatorID("").IsEmpty() {
		t.Error("empty id should report empty")
	}
	id := NewOperatorID("op-7")
	if id.IsEmpty() || id.String() != "op-7" {
		t.Errorf("unexpected id %q", id)
	}
}

func TestPaginationOptions(t *testing.T) {
	o := PaginationOptions{Page: 0, PageSize: 1000}.Normalize()
	if o.Page != 1 || o.PageSize != MaxPageSize {
		t.Fatalf("unexpected normalization: %+v", o)
	}
	if off := (PaginationOptions{Page: 3, PageSize: 10}).Offset(); off != 20 {
		t.Fatalf("expected offset 20, got %d", off)
	}

	p := NewPaginated([]int{1, 2}, 1, 2, 5)
	if p.Page.Pages != 3 || !p.HasNext() || p.Empty {
		t.Fatalf("unexpected page: %+v", p.Page)
	}
}
