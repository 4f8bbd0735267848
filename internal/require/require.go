package require

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func NoError(t *testing.T, err error) {
	if err != nil {
		t.Helper()
		t.Fatal("unexpected error:", err)
	}
}

func True(t *testing.T, test bool, args ...any) {
	if !test {
		t.Helper()
		t.Fatal(args...)
	}
}

func Equal[T any](t *testing.T, got, want T, args ...any) {
	if !reflect.DeepEqual(got, want) {
		t.Helper()
		t.Fatalf("got %v, want %v %v", got, want, args)
	}
}

func ErrorIs(t *testing.T, err, target error) {
	if !errors.Is(err, target) {
		t.Helper()
		t.Fatalf("got error %v, want %v", err, target)
	}
}
