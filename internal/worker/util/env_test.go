package util

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("VS_STR", "  value ")
	t.Setenv("VS_BOOL", "true")
	t.Setenv("VS_BAD_BOOL", "maybe")
	t.Setenv("VS_INT", "8")
	t.Setenv("VS_NEG_INT", "-1")
	t.Setenv("VS_DUR", "2m")
	t.Setenv("VS_SECS", "15")
	t.Setenv("VS_LIST", "a:9092, ,b:9092")

	if got := Env("VS_STR", "def"); got != "value" {
		t.Errorf("Env() = %q", got)
	}
	if got := Env("VS_MISSING", "def"); got != "def" {
		t.Errorf("Env(missing) = %q", got)
	}
	if !BoolEnv("VS_BOOL", false) || BoolEnv("VS_BAD_BOOL", false) {
		t.Error("BoolEnv() parsed unexpectedly")
	}
	if IntEnv("VS_INT", 1) != 8 || IntEnv("VS_NEG_INT", 4) != 4 {
		t.Error("IntEnv() parsed unexpectedly")
	}
	if DurationEnv("VS_DUR", 0) != 2*time.Minute || DurationEnv("VS_SECS", 0) != 15*time.Second {
		t.Error("DurationEnv() parsed unexpectedly")
	}
	if got := ListEnv("VS_LIST"); len(got) != 2 || got[1] != "b:9092" {
		t.Errorf("ListEnv() = %v", got)
	}
}

func TestMustEnvPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustEnv("VS_DEFINITELY_UNSET")
}
