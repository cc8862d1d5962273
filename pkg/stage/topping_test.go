package stage

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type stubSuggester struct {
	names []string
	err   error
	calls int
	last  string
}

func (s *stubSuggester) SuggestToppings(_ context.Context, preference string) ([]string, error) {
	s.calls++
	s.last = preference
	return s.names, s.err
}

func TestToppingStationSuggestAndChoose(t *testing.T) {
	s := &stubSuggester{names: []string{"Smoked Salmon", "Avocado", "Chili Oil"}}
	station := NewToppingStation(s)

	got, err := station.Suggest(context.Background(), "  savory  ")
	if err != nil {
		t.Fatalf("Suggest() error: %v", err)
	}
	if s.last != "savory" {
		t.Errorf("suggester got %q, want trimmed preference", s.last)
	}
	if !reflect.DeepEqual(got, s.names) {
		t.Errorf("Suggest() = %v, want %v", got, s.names)
	}

	res, err := station.Choose(1)
	if err != nil {
		t.Fatalf("Choose(1) error: %v", err)
	}
	if res.Kind != KindTopping || res.Topping != "Avocado" {
		t.Errorf("Choose(1) = %v", res)
	}
	if _, err := station.Choose(3); !errors.Is(err, ErrNoSuggestion) {
		t.Errorf("Choose(3) error = %v, want ErrNoSuggestion", err)
	}
}

func TestToppingStationEmptyPreference(t *testing.T) {
	s := &stubSuggester{}
	station := NewToppingStation(s)
	if _, err := station.Suggest(context.Background(), "   "); !errors.Is(err, ErrEmptyPreference) {
		t.Errorf("Suggest(blank) error = %v, want ErrEmptyPreference", err)
	}
	if s.calls != 0 {
		t.Errorf("suggester called %d times for a blank preference", s.calls)
	}
}

func TestToppingStationFallsBack(t *testing.T) {
	station := NewToppingStation(&stubSuggester{err: errors.New("offline")})
	got, err := station.Suggest(context.Background(), "Sweet")
	if err != nil {
		t.Fatalf("Suggest() error: %v", err)
	}
	want := []string{"Strawberry Jam", "Honey", "Cheddar Cheese"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest() = %v, want %v", got, want)
	}
}

func TestToppingStationCustom(t *testing.T) {
	station := NewToppingStation(&stubSuggester{})
	res, err := station.Custom("  Marmite ")
	if err != nil {
		t.Fatalf("Custom() error: %v", err)
	}
	if res.Topping != "Marmite" {
		t.Errorf("Custom() = %q", res.Topping)
	}
	if _, err := station.Custom(" "); !errors.Is(err, ErrEmptyTopping) {
		t.Errorf("Custom(blank) error = %v, want ErrEmptyTopping", err)
	}
	long, _ := station.Custom(strings.Repeat("é", 200))
	if n := len([]rune(long.Topping)); n != maxToppingLen {
		t.Errorf("long topping kept %d runes, want %d", n, maxToppingLen)
	}
}
