package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/domain"
)

// Decision is an approval outcome.
type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

// ApprovalsResource is the authorization object for approval decisions.
const ApprovalsResource = "approvals"

// ErrCommentRequired is returned when a rejection carries no comment.
var ErrCommentRequired = errors.New("a comment is required to reject")

type approvalService struct {
	api      API
	guard    Guard
	observer UseCaseObserver
}

func NewApprovalService(client API, guard Guard, observers ...UseCaseObserver) ApprovalService {
	return &approvalService{api: client, guard: guard, observer: useCaseObserverOrNoop(observers)}
}

func (s *approvalService) Decide(ctx context.Context, id string, decision Decision, comment string) (rec domain.Record, err error) {
	done := observe(ctx, s.observer, "decide", map[string]any{"id": id, "decision": string(decision)})
	defer func() { done(err) }()

	if decision != Approve && decision != Reject {
		return domain.Record{}, fmt.Errorf("unknown decision %q", decision)
	}
	if strings.TrimSpace(id) == "" {
		return domain.Record{}, fmt.Errorf("%s: missing request id", decision)
	}
	comment = strings.TrimSpace(comment)
	if decision == Reject && comment == "" {
		return domain.Record{}, ErrCommentRequired
	}
	if err = s.guard.check(ctx, ApprovalsResource, authz.ActionApprove); err != nil {
		return domain.Record{}, err
	}

	path := fmt.Sprintf("/approval-service/approvals/%s/%s", id, decision)
	resp, err := s.api.Post(ctx, path, map[string]string{"comment": comment})
	if err != nil {
		return domain.Record{}, fmt.Errorf("%s %s: %w", decision, id, err)
	}
	return api.DecodeRecord(resp.Body)
}
