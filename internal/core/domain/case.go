package domain

import (
	"errors"
	"time"
)

type CaseStatus string

const (
	CaseProcessing CaseStatus = "processing"
	CaseCompleted  CaseStatus = "completed"
	CaseError      CaseStatus = "error"
)

type RiskLevel string

const (
	RiskSafe     RiskLevel = "SAFE"
	RiskWarning  RiskLevel = "WARNING"
	RiskCritical RiskLevel = "CRITICAL"
)

// Elevated reports whether the tier warrants policy lookup.
func (r RiskLevel) Elevated() bool {
	return r == RiskWarning || r == RiskCritical
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type ActionPriority string

const (
	PriorityLow  ActionPriority = "low"
	PriorityHigh ActionPriority = "high"
)

// BillRecord is the normalized output of bill extraction. Empty strings and
// a nil amount mean the field was absent from the document; risk
// classification degrades gracefully rather than rejecting such records.
type BillRecord struct {
	TotalAmount *float64 `json:"total_amount"`
	DueDate     string   `json:"due_date,omitempty"`
	VendorName  string   `json:"vendor_name,omitempty"`
	InvoiceID   string   `json:"invoice_id,omitempty"`
}

// Amount returns the billed amount, zero when absent.
func (b BillRecord) Amount() float64 {
	if b.TotalAmount == nil {
		return 0
	}
	return *b.TotalAmount
}

type PolicyPassage struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Section string  `json:"section,omitempty"`
	Page    string  `json:"page,omitempty"`
}

type Advice struct {
	Summary        string     `json:"summary"`
	Citations      []string   `json:"citations"`
	ActionableStep string     `json:"actionable_step"`
	Confidence     Confidence `json:"confidence"`
}

type RecommendedAction struct {
	Action      string         `json:"action"`
	Description string         `json:"description"`
	Priority    ActionPriority `json:"priority"`
}

type PolicyFindings struct {
	Passages []PolicyPassage `json:"passages"`
	Advice   Advice          `json:"advice"`
}

// CaseAssessment is the aggregate produced by one assessment run. It is
// created fresh per case and never mutated after Status turns terminal.
type CaseAssessment struct {
	ID                 string              `json:"id"`
	BillData           *BillRecord         `json:"bill_data"`
	RiskLevel          RiskLevel           `json:"risk_level"`
	PolicyFindings     *PolicyFindings     `json:"policy_findings"`
	RecommendedActions []RecommendedAction `json:"recommended_actions"`
	NegotiationEmail   *string             `json:"negotiation_email"`
	Status             CaseStatus          `json:"status"`
	ErrorMessage       string              `json:"error,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

func NewCaseAssessment(id string, now time.Time) *CaseAssessment {
	return &CaseAssessment{
		ID:                 id,
		RiskLevel:          RiskSafe,
		RecommendedActions: []RecommendedAction{},
		Status:             CaseProcessing,
		CreatedAt:          now.UTC(),
	}
}

func (c *CaseAssessment) Terminal() bool {
	return c.Status == CaseCompleted || c.Status == CaseError
}

func (c *CaseAssessment) AttachBill(bill BillRecord) {
	c.BillData = &bill
}

// AttachFindings records policy passages and advice. Findings are only
// legal on elevated tiers.
func (c *CaseAssessment) AttachFindings(findings PolicyFindings) error {
	if c.Terminal() {
		return errors.New("assessment already terminal")
	}
	if !c.RiskLevel.Elevated() {
		return errors.New("policy findings require WARNING or CRITICAL tier")
	}
	c.PolicyFindings = &findings
	return nil
}

// AttachNegotiationEmail records the drafted email. An email is only legal
// on a CRITICAL case that already carries findings.
func (c *CaseAssessment) AttachNegotiationEmail(email string) error {
	if c.Terminal() {
		return errors.New("assessment already terminal")
	}
	if c.RiskLevel != RiskCritical || c.PolicyFindings == nil {
		return errors.New("negotiation email requires CRITICAL tier with findings")
	}
	c.NegotiationEmail = &email
	return nil
}

// Complete finalizes the assessment. A completed case always carries at
// least one recommended action.
func (c *CaseAssessment) Complete(actions []RecommendedAction) error {
	if c.Terminal() {
		return errors.New("assessment already terminal")
	}
	if len(actions) == 0 {
		return errors.New("completed assessment requires at least one action")
	}
	c.RecommendedActions = actions
	c.Status = CaseCompleted
	return nil
}

// Fail finalizes the assessment as errored, preserving whatever partial
// progress was attached before the failure.
func (c *CaseAssessment) Fail(message string) {
	if c.Terminal() {
		return
	}
	c.Status = CaseError
	c.ErrorMessage = message
}
