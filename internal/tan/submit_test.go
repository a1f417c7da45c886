package tan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oyaguma3/fints-tan-bridge/internal/banking"
	"github.com/oyaguma3/fints-tan-bridge/internal/fints"
	"github.com/oyaguma3/fints-tan-bridge/internal/session"
	"github.com/oyaguma3/fints-tan-bridge/pkg/apperr"
)

func newPendingSession(kind session.OperationKind, ref string) *session.Session {
	sess := &session.Session{ID: "sess-1", CreatedAt: time.Now()}
	sess.SetPending(&session.PendingOperation{
		Kind:         kind,
		TanReference: ref,
		Challenge:    "Bitte TAN eingeben",
		CreatedAt:    time.Now(),
	})
	return sess
}

func TestSubmit_NoPendingOperation(t *testing.T) {
	sess := &session.Session{ID: "sess-1"}
	s := NewSubmitter()

	outcome := s.Submit(context.Background(), sess, session.KindSync, "ref-1", "123456",
		func(ctx context.Context, tanReference, tan string) (*banking.Response, error) {
			t.Fatal("resume should not be called without a pending operation")
			return nil, nil
		})

	if outcome.Status != StatusFailed {
		t.Fatalf("Status = %s, want %s", outcome.Status, StatusFailed)
	}
	if !errors.Is(outcome.Err, apperr.ErrNoPendingOperation) {
		t.Errorf("Err = %v, want ErrNoPendingOperation", outcome.Err)
	}
}

func TestSubmit_KindMismatch(t *testing.T) {
	sess := newPendingSession(session.KindBalance, "ref-1")
	s := NewSubmitter()

	outcome := s.Submit(context.Background(), sess, session.KindSync, "ref-1", "123456",
		func(ctx context.Context, tanReference, tan string) (*banking.Response, error) {
			t.Fatal("resume should not be called on kind mismatch")
			return nil, nil
		})

	if !errors.Is(outcome.Err, apperr.ErrNoPendingOperation) {
		t.Errorf("Err = %v, want ErrNoPendingOperation", outcome.Err)
	}
	// 不一致の提出では既存の保留中操作を壊さない
	if sess.Pending() == nil {
		t.Error("pending operation should survive a mismatched submission")
	}
}

func TestSubmit_SuccessClearsPending(t *testing.T) {
	sess := newPendingSession(session.KindSync, "ref-1")
	s := NewSubmitter()

	var gotRef, gotTan string
	outcome := s.Submit(context.Background(), sess, session.KindSync, "", "987654",
		func(ctx context.Context, tanReference, tan string) (*banking.Response, error) {
			gotRef, gotTan = tanReference, tan
			return &banking.Response{
				Answers: []fints.Answer{{Code: fints.CodeExecuted, Text: "Auftrag ausgeführt"}},
			}, nil
		})

	if outcome.Status != StatusSuccess {
		t.Fatalf("Status = %s, want %s", outcome.Status, StatusSuccess)
	}
	// 参照未指定の場合は保留中操作の参照を補完する
	if gotRef != "ref-1" {
		t.Errorf("resume reference = %q, want %q", gotRef, "ref-1")
	}
	if gotTan != "987654" {
		t.Errorf("resume tan = %q, want %q", gotTan, "987654")
	}
	if sess.Pending() != nil {
		t.Error("pending operation should be cleared on success")
	}
}

func TestSubmit_PendingPreservedForResubmission(t *testing.T) {
	sess := newPendingSession(session.KindSync, "ref-1")
	s := NewSubmitter()

	outcome := s.Submit(context.Background(), sess, session.KindSync, "ref-1", "",
		func(ctx context.Context, tanReference, tan string) (*banking.Response, error) {
			return nil, &banking.DialogError{
				Answers: []fints.Answer{{Code: fints.CodeSCAPending, Text: "noch nicht freigegeben"}},
			}
		})

	if outcome.Status != StatusPending {
		t.Fatalf("Status = %s, want %s", outcome.Status, StatusPending)
	}
	if sess.Pending() == nil {
		t.Fatal("pending operation must survive a pending outcome")
	}

	// 温存された保留中操作に対して再提出が受理される
	outcome = s.Submit(context.Background(), sess, session.KindSync, "ref-1", "123456",
		func(ctx context.Context, tanReference, tan string) (*banking.Response, error) {
			return &banking.Response{}, nil
		})
	if outcome.Status != StatusSuccess {
		t.Fatalf("resubmission Status = %s, want %s", outcome.Status, StatusSuccess)
	}
}

func TestSubmit_DeclinedClearsPending(t *testing.T) {
	sess := newPendingSession(session.KindBalance, "ref-1")
	s := NewSubmitter()

	outcome := s.Submit(context.Background(), sess, session.KindBalance, "ref-1", "",
		func(ctx context.Context, tanReference, tan string) (*banking.Response, error) {
			return nil, &banking.DialogError{
				Answers: []fints.Answer{{Code: fints.CodeApprovalExpired, Text: "Freigabe abgelaufen"}},
			}
		})

	if outcome.Status != StatusFailed {
		t.Fatalf("Status = %s, want %s", outcome.Status, StatusFailed)
	}
	if !errors.Is(outcome.Err, apperr.ErrDecoupledCancelled) {
		t.Errorf("Err = %v, want ErrDecoupledCancelled", outcome.Err)
	}
	if sess.Pending() != nil {
		t.Error("pending operation should be cleared on hard failure")
	}
}

func TestSubmit_InvalidTanClearsPending(t *testing.T) {
	sess := newPendingSession(session.KindSync, "ref-1")
	s := NewSubmitter()

	outcome := s.Submit(context.Background(), sess, session.KindSync, "ref-1", "000000",
		func(ctx context.Context, tanReference, tan string) (*banking.Response, error) {
			return nil, &banking.DialogError{
				Answers: []fints.Answer{{Code: fints.CodeTanInvalid, Text: "TAN ungültig"}},
			}
		})

	if !errors.Is(outcome.Err, apperr.ErrTanInvalid) {
		t.Errorf("Err = %v, want ErrTanInvalid", outcome.Err)
	}
	if sess.Pending() != nil {
		t.Error("pending operation should be cleared when the TAN is rejected")
	}
}

func TestClassify_NilResponseWithoutError(t *testing.T) {
	outcome := Classify("ref-1", nil, nil)
	if outcome.Status != StatusFailed {
		t.Fatalf("Status = %s, want %s", outcome.Status, StatusFailed)
	}
	if outcome.Err == nil {
		t.Error("Err should describe the missing response")
	}
}

func TestClassify_NewChallengeIsPending(t *testing.T) {
	resp := &banking.Response{
		Tan: &banking.TanChallenge{Reference: "ref-next", Challenge: "erneut freigeben"},
	}
	outcome := Classify("ref-old", resp, nil)
	if outcome.Status != StatusPending {
		t.Fatalf("Status = %s, want %s", outcome.Status, StatusPending)
	}
	if outcome.Reference != "ref-next" {
		t.Errorf("Reference = %q, want %q", outcome.Reference, "ref-next")
	}
}
