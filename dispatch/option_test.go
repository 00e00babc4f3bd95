package dispatch

import "testing"

func TestNewOptionCapturesArgs(t *testing.T) {
	args := []string{"--param1", "-p"}
	opt := NewOption(Config{"type": Int, "required": true}, args...)
	args[0] = "--changed"

	if opt.Args[0] != "--param1" || opt.Args[1] != "-p" {
		t.Fatalf("Args = %v, want [--param1 -p]", opt.Args)
	}
	if opt.Config["type"] != Int || opt.Config["required"] != true {
		t.Fatalf("Config = %v", opt.Config)
	}
}

func TestOptionEqual(t *testing.T) {
	a := NewOption(Config{"choices": []string{"a", "b"}}, "--x")
	b := NewOption(Config{"choices": []string{"a", "b"}}, "--x")
	if !a.Equal(b) {
		t.Fatalf("%v should equal %v", a, b)
	}
	if a.Equal(NewOption(Config{"choices": []string{"a"}}, "--x")) {
		t.Fatalf("different config should not be equal")
	}
	if a.Equal(NewOption(Config{"choices": []string{"a", "b"}}, "--y")) {
		t.Fatalf("different args should not be equal")
	}
	if !NewOption(nil, "x").Equal(NewOption(Config{}, "x")) {
		t.Fatalf("nil and empty config should be equal")
	}
}
