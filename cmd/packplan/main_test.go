package main

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestRunPlansSingleBatch(t *testing.T) {
	input := "NATURAL,40,500.0\n1001,6200,30,9.653\n2001,7200,50,11.21\n"
	var out strings.Builder

	if err := run(strings.NewReader(input), &out, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	want := "Pack Number: 1\n" +
		"1001,6200,30,9.653\n" +
		"2001,7200,10,11.21\n" +
		"Pack Length: 7200, Pack Weight: 401.69\n" +
		"\n" +
		"Pack Number: 2\n" +
		"2001,7200,40,11.21\n" +
		"Pack Length: 7200, Pack Weight: 448.4\n"
	if out.String() != want {
		t.Fatalf("expected output:\n%s\ngot:\n%s", want, out.String())
	}
}

func TestRunPlansMultipleBatches(t *testing.T) {
	input := "NATURAL,10,50\n1,100,2,1.0\n\nLONG_TO_SHORT,5,25\n2,200,1,2.0\n"
	var out strings.Builder

	if err := run(strings.NewReader(input), &out, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	want := "Pack Number: 1\n" +
		"1,100,2,1\n" +
		"Pack Length: 100, Pack Weight: 2\n" +
		"\n" +
		"Pack Number: 1\n" +
		"2,200,1,2\n" +
		"Pack Length: 200, Pack Weight: 2\n"
	if out.String() != want {
		t.Fatalf("expected output:\n%s\ngot:\n%s", want, out.String())
	}
}

func TestRunEmptyInputIsNoOp(t *testing.T) {
	var out strings.Builder

	if err := run(strings.NewReader(""), &out, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if out.String() != "" {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestRunSurfacesParseErrors(t *testing.T) {
	if err := run(strings.NewReader("bogus line\n"), &strings.Builder{}, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRunSurfacesPlanErrors(t *testing.T) {
	input := "NATURAL,40,500.0\n1,10,1,900.0\n"
	if err := run(strings.NewReader(input), &strings.Builder{}, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected planning error for unpackable item")
	}
}
