package ai_test

import (
	"testing"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
)

func TestRegistry_Register_And_PlannerFor(t *testing.T) {
	reg := ai.NewRegistry()
	if err := reg.Register(duelistDomain(), &mockScriptCaller{}, "enemy"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	planner, ok := reg.PlannerFor("duelist")
	if !ok || planner == nil || planner.Domain() != "duelist" {
		t.Fatal("expected planner for duelist")
	}
}

func TestRegistry_Register_CollisionError(t *testing.T) {
	reg := ai.NewRegistry()
	caller := &mockScriptCaller{}
	_ = reg.Register(duelistDomain(), caller, "enemy")
	if err := reg.Register(duelistDomain(), caller, "enemy"); err == nil {
		t.Fatal("expected collision error on second Register")
	}
}

func TestRegistry_PlannerFor_NotFound(t *testing.T) {
	reg := ai.NewRegistry()
	if _, ok := reg.PlannerFor("missing"); ok {
		t.Fatal("expected not found")
	}
}

func TestNewRegistryFromDomains_SortedIDs(t *testing.T) {
	second := duelistDomain()
	second.ID = "archer"
	reg, err := ai.NewRegistryFromDomains([]*ai.Domain{duelistDomain(), second}, &mockScriptCaller{}, "enemy")
	if err != nil {
		t.Fatalf("NewRegistryFromDomains: %v", err)
	}
	ids := reg.Domains()
	if len(ids) != 2 || ids[0] != "archer" || ids[1] != "duelist" {
		t.Fatalf("expected [archer duelist], got %v", ids)
	}
	if _, err := ai.NewRegistryFromDomains([]*ai.Domain{duelistDomain(), duelistDomain()}, &mockScriptCaller{}, "enemy"); err == nil {
		t.Fatal("expected collision error")
	}
}
