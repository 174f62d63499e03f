// Package policy queries the policy engine for rainy-day handling decisions.
//
// When a building block fails, the orchestrator asks for a decision keyed by
// service type, vnf type, building block, work step and error code. The
// RainyDayTreatments dictionary lists which treatments (Rollback, Retry,
// Abort, ...) are allowed for a building block at a given work step.
package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dshills/bbflow/flow/rest"
)

const (
	// ComponentName identifies the caller in decision requests.
	ComponentName = "mso"

	decisionPath   = "/getDecision"
	dictionaryPath = "/getDictionaryItems"

	treatmentsDictionary = "RainyDayTreatments"
	decisionDictionary   = "Decision"
)

// ErrNoTreatment is returned by AllowedTreatments when the dictionary has no
// entry for the building block and work step.
var ErrNoTreatment = errors.New("no allowed treatments for building block and work step")

type (
	// DecisionAttributes select the decision.
	DecisionAttributes struct {
		ServiceType string `json:"ServiceType,omitempty"`
		VnfType     string `json:"VNFType,omitempty"`
		BBID        string `json:"BB_ID,omitempty"`
		WorkStep    string `json:"WorkStep,omitempty"`
		ErrorCode   string `json:"ErrorCode,omitempty"`
	}

	decisionRequest struct {
		DecisionAttributes DecisionAttributes `json:"decisionAttributes"`
		ComponentName      string             `json:"ecompcomponentName"`
	}

	// Decision is the engine's answer, e.g. {"decision":"PERMIT","details":"Abort"}.
	Decision struct {
		Decision string `json:"decision"`
		Details  string `json:"details"`
	}

	dictionaryItemsRequest struct {
		DictionaryType string `json:"dictionaryType"`
		Dictionary     string `json:"dictionary"`
	}

	// StringValue is how the dictionary wraps scalar values.
	StringValue struct {
		String    string `json:"string"`
		ValueType string `json:"valueType,omitempty"`
	}

	// DictionaryData is one RainyDayTreatments entry.
	DictionaryData struct {
		ID         StringValue `json:"id"`
		BBID       StringValue `json:"bbid"`
		WorkStep   StringValue `json:"workstep"`
		Treatments StringValue `json:"treatments"`
	}

	allowedTreatmentsResponse struct {
		DictionaryJSON struct {
			DictionaryDatas []DictionaryData `json:"DictionaryDatas"`
		} `json:"dictionaryJson"`
		ResponseCode    int    `json:"responseCode"`
		ResponseMessage string `json:"responseMessage"`
	}
)

// TreatmentList splits the comma separated treatments value.
func (d DictionaryData) TreatmentList() []string {
	var out []string
	for _, t := range strings.Split(d.Treatments.String, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Client talks to the policy engine REST API.
type Client struct {
	rest   *rest.Client
	logger *slog.Logger
}

// NewClient wraps a REST client whose base URL points at the policy engine
// "/pdp/api" root. A nil logger uses slog.Default().
func NewClient(rc *rest.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{rest: rc, logger: logger}
}

// GetDecision requests a decision for attrs.
func (c *Client) GetDecision(ctx context.Context, attrs DecisionAttributes) (*Decision, error) {
	req := decisionRequest{DecisionAttributes: attrs, ComponentName: ComponentName}
	var d Decision
	if err := c.rest.Post(ctx, decisionPath, req, &d); err != nil {
		return nil, fmt.Errorf("failed to get policy decision: %w", err)
	}
	return &d, nil
}

// AllowedTreatments returns the RainyDayTreatments entry matching bbID and
// workStep exactly.
func (c *Client) AllowedTreatments(ctx context.Context, bbID, workStep string) (*DictionaryData, error) {
	req := dictionaryItemsRequest{DictionaryType: decisionDictionary, Dictionary: treatmentsDictionary}
	var resp allowedTreatmentsResponse
	if err := c.rest.Post(ctx, dictionaryPath, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get allowed treatments: %w", err)
	}

	for _, entry := range resp.DictionaryJSON.DictionaryDatas {
		if entry.BBID.String == bbID && entry.WorkStep.String == workStep {
			return &entry, nil
		}
	}

	c.logger.Error("There is no AllowedTreatments with that specified parameter set",
		slog.String("bb_id", bbID),
		slog.String("work_step", workStep))
	return nil, ErrNoTreatment
}
