package bytecode

import (
	"testing"

	"github.com/Ashymad/dlox/internal/value"
)

func TestGetLineAcrossRuns(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpNil, 1)
	c.WriteOp(OpNil, 1)
	c.WriteOp(OpTrue, 2)
	c.WriteOp(OpPop, 2)
	c.WriteOp(OpReturn, 3)

	want := []int{1, 1, 2, 2, 3}
	for offset, line := range want {
		if got := c.GetLine(offset); got != line {
			t.Errorf("GetLine(%d) = %d, want %d", offset, got, line)
		}
	}
}

func TestAddConstantOverflow(t *testing.T) {
	c := NewChunk()
	for i := 0; i < maxConstants; i++ {
		if _, err := c.AddConstant(value.Number(float64(i))); err != nil {
			t.Fatalf("unexpected error at constant %d: %v", i, err)
		}
	}
	if _, err := c.AddConstant(value.Number(1)); err != ErrTooManyConstants {
		t.Fatalf("expected ErrTooManyConstants, got %v", err)
	}
}

func TestAddConstantReturnsIndex(t *testing.T) {
	c := NewChunk()
	idx0, _ := c.AddConstant(value.Number(1))
	idx1, _ := c.AddConstant(value.Number(2))
	if idx0 != 0 || idx1 != 1 {
		t.Fatalf("got indices %d, %d; want 0, 1", idx0, idx1)
	}
}
