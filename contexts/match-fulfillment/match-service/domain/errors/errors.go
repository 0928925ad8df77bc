package errors

import "errors"

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrNotOfferOwner           = errors.New("match does not belong to this brand")
	ErrNotMatchCreator         = errors.New("match does not belong to this creator")
	ErrMatchNotApprovable      = errors.New("match cannot be approved in current state")
	ErrMatchNotRevocable       = errors.New("match cannot be revoked in current state")
	ErrCampaignCodeTaken       = errors.New("campaign code already in use")
	ErrDeliverableNotFound     = errors.New("deliverable not found")
	ErrDeliverableNotDue       = errors.New("deliverable is not open for this action")
	ErrSubmissionConflict      = errors.New("deliverable was already submitted")
	ErrInvalidPermalink        = errors.New("submission permalink must be a valid http(s) url")
	ErrUsageRightsRequired     = errors.New("offer requires a usage rights grant on submission")
	ErrVerificationNotPossible = errors.New("deliverable cannot be verified without a permalink")
)
