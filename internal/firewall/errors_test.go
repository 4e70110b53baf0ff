package firewall

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorWrappingAndKind(t *testing.T) {
	cause := errors.New("yaml: line 3: mapping values are not allowed")
	err := NewError("pattern.FileProvider.Reload", ErrPatternLoadError, cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause must be reachable via errors.Is")
	}
	if KindOf(err) != ErrPatternLoadError {
		t.Errorf("KindOf = %v", KindOf(err))
	}
	if !IsKind(err, ErrPatternLoadError) || IsKind(err, ErrPolicyNotFound) {
		t.Error("IsKind mismatch")
	}

	// Still inspectable through another layer of wrapping.
	outer := fmt.Errorf("reload: %w", err)
	if !IsKind(outer, ErrPatternLoadError) {
		t.Error("IsKind must see through fmt.Errorf wrapping")
	}
}

func TestKindOfPlainErrorIsInternal(t *testing.T) {
	if KindOf(errors.New("boom")) != ErrInternal {
		t.Error("plain errors default to internal")
	}
}

func TestErrorStrings(t *testing.T) {
	err := NewError("op", ErrPolicyMalformed, nil)
	if err.Error() != "op: policy_malformed" {
		t.Errorf("Error() = %q", err.Error())
	}
	withCause := NewError("op", ErrPolicyMalformed, errors.New("bad"))
	if withCause.Error() != "op: policy_malformed: bad" {
		t.Errorf("Error() = %q", withCause.Error())
	}
}
