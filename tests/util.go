package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/kiwisport/clubboard/core/operator"
)

func CreateOperator(
	t *testing.T,
	repo operator.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) operator.Operator {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	op := operator.Operator{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := op.SetPassword(pwd); err != nil {
			t.Fatalf("CreateOperator() failed: %v", err)
		}
	}
	op, err := repo.CreateOperator(context.Background(), op)
	if err != nil {
		t.Fatalf("CreateOperator() failed: %v", err)
	}
	return op
}

// AssertJSONEqual compares two JSON documents and reports a unified
// diff of their indented forms on mismatch.
func AssertJSONEqual(t *testing.T, got, want []byte) {
	t.Helper()

	var gotBuf, wantBuf bytes.Buffer
	if err := json.Indent(&gotBuf, got, "", "  "); err != nil {
		t.Fatalf("AssertJSONEqual() got is not valid JSON: %v", err)
	}
	if err := json.Indent(&wantBuf, want, "", "  "); err != nil {
		t.Fatalf("AssertJSONEqual() want is not valid JSON: %v", err)
	}
	if bytes.Equal(bytes.TrimSpace(gotBuf.Bytes()), bytes.TrimSpace(wantBuf.Bytes())) {
		return
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(wantBuf.String()),
		B:        difflib.SplitLines(gotBuf.String()),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		t.Fatalf("AssertJSONEqual() failed to diff: %v", err)
	}
	t.Errorf("JSON mismatch:\n%s", diff)
}
