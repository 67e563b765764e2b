package dispatch

import (
	"errors"
	"testing"
)

type fakeRefiner struct {
	name   string
	prefix string
	alias  string
	allow  bool
}

func (f fakeRefiner) Prefix(rc *RefineContext) (string, bool, error) {
	if len(rc.Content) >= len(f.prefix) && rc.Content[:len(f.prefix)] == f.prefix {
		return f.prefix, true, nil
	}

	return "", false, nil
}

func (f fakeRefiner) Aliases(rc *RefineContext, token string) (bool, error) {
	return token == f.alias, nil
}

func (f fakeRefiner) Filters(rc *RefineContext) (bool, error) {
	return f.allow, nil
}

func TestRefineMatchesFirstAcceptingRefiner(t *testing.T) {
	refiners := []Refiner{
		fakeRefiner{name: "ping", prefix: "!", alias: "ping", allow: true},
		fakeRefiner{name: "pong", prefix: "!", alias: "pong", allow: true},
	}

	rc := &RefineContext{Content: "!pong"}

	r, err := Refine(rc, refiners)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}

	got, ok := r.(fakeRefiner)
	if !ok || got.name != "pong" {
		t.Fatalf("got %+v, want the pong refiner", r)
	}
}

func TestRefineReturnsNilWhenNoneMatch(t *testing.T) {
	refiners := []Refiner{
		fakeRefiner{name: "ping", prefix: "!", alias: "ping", allow: true},
	}

	rc := &RefineContext{Content: "!unknown"}

	r, err := Refine(rc, refiners)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}

	if r != nil {
		t.Fatalf("got %v, want nil", r)
	}
}

func TestRefineShortCircuitsOnFilterRejection(t *testing.T) {
	refiners := []Refiner{
		fakeRefiner{name: "locked", prefix: "!", alias: "ping", allow: false},
	}

	rc := &RefineContext{Content: "!ping"}

	r, err := Refine(rc, refiners)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}

	if r != nil {
		t.Fatalf("got %v, want nil (filter rejected)", r)
	}
}

func TestRefinePropagatesPrefixError(t *testing.T) {
	boom := errors.New("boom")

	refiners := []Refiner{erroringPrefixRefiner{err: boom}}

	rc := &RefineContext{Content: "!ping"}

	_, err := Refine(rc, refiners)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want %v", err, boom)
	}
}

type erroringPrefixRefiner struct {
	err error
}

func (e erroringPrefixRefiner) Prefix(rc *RefineContext) (string, bool, error) {
	return "", false, e.err
}

func (e erroringPrefixRefiner) Aliases(rc *RefineContext, token string) (bool, error) {
	return false, nil
}

func (e erroringPrefixRefiner) Filters(rc *RefineContext) (bool, error) {
	return false, nil
}
