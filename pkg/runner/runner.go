// Package runner resolves optimizer requests into runs. It is shared by the
// command line, the HTTP server and the Lambda handler.
package runner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"

	"github.com/policyevo/policyevo/pkg/api/v1alpha1"
	"github.com/policyevo/policyevo/pkg/blend"
	"github.com/policyevo/policyevo/pkg/evolution"
	"github.com/policyevo/policyevo/pkg/outcomes"
)

// Mode selects the algorithm a request runs.
type Mode string

const (
	ModeOptimize Mode = "optimize"
	ModeBlend    Mode = "blend"
)

// ErrInvalidRequest is returned for request bodies that cannot be decoded.
var ErrInvalidRequest = errors.New("invalid request")

// Request is a decoded, defaulted and validated run request.
type Request struct {
	Mode     Mode
	Outcomes *outcomes.PotentialOutcomes
	Config   *v1alpha1.OptimizerConfiguration
}

// Response is the body returned for a successful run.
type Response struct {
	Mode        Mode              `json:"mode"`
	Assignments [][]bool          `json:"assignments"`
	Elite       []evolution.Point `json:"elite,omitempty"`
	Generations int               `json:"generations,omitempty"`
	Weights     []float64         `json:"weights,omitempty"`

	// Population holds the final generation of an optimize run. It is kept
	// out of encoded responses.
	Population []evolution.Point `json:"-"`
}

// ErrorResponse is the body returned for a failed run.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ParseRequest decodes a body of the form
// {"mode": ..., "outcomes": {...}, "config": {...}}. When fallback is set it
// is used for a body without a mode.
func ParseRequest(body []byte, fallback Mode) (*Request, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrInvalidRequest)
	}
	doc := gjson.ParseBytes(body)

	mode := Mode(doc.Get("mode").String())
	if mode == "" {
		mode = fallback
	}
	if mode != ModeOptimize && mode != ModeBlend {
		return nil, fmt.Errorf("%w: unsupported mode %q", ErrInvalidRequest, mode)
	}

	raw := doc.Get("outcomes")
	if !raw.Exists() {
		return nil, fmt.Errorf("%w: missing outcomes", ErrInvalidRequest)
	}
	po, err := outcomes.Parse([]byte(raw.Raw))
	if err != nil {
		return nil, err
	}

	cfgRaw := doc.Get("config")
	if !cfgRaw.Exists() {
		return nil, fmt.Errorf("%w: missing config", ErrInvalidRequest)
	}
	cfg, err := v1alpha1.Decode([]byte(cfgRaw.Raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := Complete(cfg); err != nil {
		return nil, err
	}

	return &Request{Mode: mode, Outcomes: po, Config: cfg}, nil
}

// Complete defaults and validates cfg in place. A non-positive treat count
// is reported as ErrInvalidQuota; the upper bound is checked per input.
func Complete(cfg *v1alpha1.OptimizerConfiguration) error {
	v1alpha1.Default(cfg)
	if cfg.TreatCount <= 0 {
		return fmt.Errorf("%w: treat count %d must be positive", evolution.ErrInvalidQuota, cfg.TreatCount)
	}
	if err := v1alpha1.ValidateOptimizerConfiguration(cfg); err != nil {
		return fmt.Errorf("%w: %v", evolution.ErrInvalidConfig, err)
	}
	return nil
}

// Run executes req.
func Run(ctx context.Context, req *Request, opts ...evolution.Option) (*Response, error) {
	logger := klog.FromContext(ctx).WithValues("mode", req.Mode)
	start := time.Now()

	var (
		resp *Response
		err  error
	)
	switch req.Mode {
	case ModeOptimize:
		resp, err = runOptimize(ctx, req, opts...)
	case ModeBlend:
		resp, err = runBlend(ctx, req)
	default:
		err = fmt.Errorf("%w: unsupported mode %q", ErrInvalidRequest, req.Mode)
	}

	if err != nil {
		logger.Error(err, "Run failed")
		return nil, err
	}
	logger.V(2).Info("Run finished", "policies", len(resp.Assignments), "duration", time.Since(start))
	return resp, nil
}

func runOptimize(ctx context.Context, req *Request, opts ...evolution.Option) (*Response, error) {
	result, err := evolution.Optimize(ctx, req.Outcomes, evolution.ConfigFromAPI(req.Config), opts...)
	if err != nil {
		return nil, err
	}
	return &Response{
		Mode:        ModeOptimize,
		Assignments: result.Assignments,
		Elite:       result.Elite,
		Generations: result.Generations,
		Population:  result.Population,
	}, nil
}

func runBlend(ctx context.Context, req *Request) (*Response, error) {
	nPolicies := int(ptr.Deref(req.Config.BlendPolicies, v1alpha1.DefaultBlendPolicies))
	workers := int(ptr.Deref(req.Config.Workers, 0))
	policies, err := blend.Sweep(ctx, req.Outcomes, int(req.Config.TreatCount), nPolicies, workers)
	if err != nil {
		return nil, err
	}
	return &Response{
		Mode:        ModeBlend,
		Assignments: policies,
		Weights:     blend.Weights(nPolicies),
	}, nil
}

// StatusCode maps a run error to an HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, outcomes.ErrInputShapeMismatch),
		errors.Is(err, outcomes.ErrNonFinite),
		errors.Is(err, outcomes.ErrMalformedInput),
		errors.Is(err, evolution.ErrInvalidQuota),
		errors.Is(err, evolution.ErrInvalidConfig),
		errors.Is(err, blend.ErrInvalidPolicyCount):
		return http.StatusBadRequest
	case errors.Is(err, evolution.ErrDegenerateResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
