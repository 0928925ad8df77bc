package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ApproveMatchResponse struct {
	OK     bool          `json:"ok"`
	Match  ApprovedMatch `json:"match"`
	Errors []string      `json:"errors"`
}

type ApprovedMatch struct {
	Status          string `json:"status"`
	CampaignCode    string `json:"campaign_code"`
	ShareURLPath    string `json:"share_url_path"`
	DiscountCreated bool   `json:"discount_created"`
	OrderCreated    bool   `json:"order_created"`
	ManualShipment  bool   `json:"manual_shipment"`
}

type RevokeMatchRequest struct {
	Reason string `json:"reason"`
}

type SubmitDeliverableRequest struct {
	Permalink        string `json:"permalink"`
	Note             string `json:"note"`
	GrantUsageRights bool   `json:"grant_usage_rights"`
}

type VerifyDeliverableRequest struct {
	Permalink string `json:"permalink"`
}

type RejectDeliverableRequest struct {
	Reason string `json:"reason"`
}

type RequireRepostRequest struct {
	Reason string `json:"reason"`
}

type MatchDTO struct {
	MatchID      string `json:"match_id"`
	OfferID      string `json:"offer_id"`
	CreatorID    string `json:"creator_id"`
	Status       string `json:"status"`
	CampaignCode string `json:"campaign_code,omitempty"`
	ShareURLPath string `json:"share_url_path,omitempty"`
	AcceptedAt   string `json:"accepted_at,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// DeliverableDTO carries the coarse creator-facing view; raw integration
// errors never appear here.
type DeliverableDTO struct {
	MatchID            string `json:"match_id"`
	Status             string `json:"status"`
	DueAt              string `json:"due_at"`
	SubmittedPermalink string `json:"submitted_permalink,omitempty"`
	SubmittedAt        string `json:"submitted_at,omitempty"`
	UsageRightsGranted bool   `json:"usage_rights_granted"`
	VerifiedAt         string `json:"verified_at,omitempty"`
}

type GetMatchResponse struct {
	Match       MatchDTO        `json:"match"`
	Deliverable *DeliverableDTO `json:"deliverable,omitempty"`
}

type ListMatchesResponse struct {
	Items []MatchDTO `json:"items"`
}
