package runner_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/policyevo/policyevo/pkg/blend"
	"github.com/policyevo/policyevo/pkg/evolution"
	"github.com/policyevo/policyevo/pkg/outcomes"
	"github.com/policyevo/policyevo/pkg/runner"
)

const twoUnits = `{"obj1_treated":[5,1],"obj1_control":[1,5],"obj2_treated":[1,5],"obj2_control":[5,1]}`

func body(mode, outcomesJSON, config string) []byte {
	if mode == "" {
		return []byte(fmt.Sprintf(`{"outcomes":%s,"config":%s}`, outcomesJSON, config))
	}
	return []byte(fmt.Sprintf(`{"mode":%q,"outcomes":%s,"config":%s}`, mode, outcomesJSON, config))
}

func TestParseRequest(t *testing.T) {
	req, err := runner.ParseRequest(body("blend", twoUnits, `{"treatCount":1,"blendPolicies":2}`), runner.ModeOptimize)
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	if req.Mode != runner.ModeBlend {
		t.Errorf("Mode = %q, want %q", req.Mode, runner.ModeBlend)
	}
	if req.Outcomes.Len() != 2 {
		t.Errorf("Outcomes.Len() = %d, want 2", req.Outcomes.Len())
	}
	if req.Config.Generations == nil || *req.Config.Generations != 100 {
		t.Errorf("config was not defaulted: generations = %v", req.Config.Generations)
	}

	req, err = runner.ParseRequest(body("", twoUnits, `{"treatCount":1}`), runner.ModeOptimize)
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	if req.Mode != runner.ModeOptimize {
		t.Errorf("fallback Mode = %q, want %q", req.Mode, runner.ModeOptimize)
	}
}

func TestParseRequestErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    []byte
		wantErr error
	}{
		{name: "not json", body: []byte(`{"mode":`), wantErr: runner.ErrInvalidRequest},
		{name: "unknown mode", body: body("anneal", twoUnits, `{"treatCount":1}`), wantErr: runner.ErrInvalidRequest},
		{name: "missing outcomes", body: []byte(`{"mode":"blend","config":{"treatCount":1}}`), wantErr: runner.ErrInvalidRequest},
		{name: "missing config", body: []byte(fmt.Sprintf(`{"mode":"blend","outcomes":%s}`, twoUnits)), wantErr: runner.ErrInvalidRequest},
		{name: "unknown config field", body: body("blend", twoUnits, `{"treatCount":1,"colour":"red"}`), wantErr: runner.ErrInvalidRequest},
		{name: "malformed outcomes", body: body("blend", `{"obj1_treated":[1]}`, `{"treatCount":1}`), wantErr: outcomes.ErrMalformedInput},
		{
			name:    "shape mismatch",
			body:    body("blend", `{"obj1_treated":[1,2],"obj1_control":[1],"obj2_treated":[1],"obj2_control":[1]}`, `{"treatCount":1}`),
			wantErr: outcomes.ErrInputShapeMismatch,
		},
		{name: "zero quota", body: body("blend", twoUnits, `{"treatCount":0}`), wantErr: evolution.ErrInvalidQuota},
		{name: "missing quota", body: body("optimize", twoUnits, `{"generationSize":4}`), wantErr: evolution.ErrInvalidQuota},
		{name: "invalid config", body: body("optimize", twoUnits, `{"treatCount":1,"temperatureDecay":2}`), wantErr: evolution.ErrInvalidConfig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runner.ParseRequest(tc.body, "")
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ParseRequest() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestRunBlend(t *testing.T) {
	req, err := runner.ParseRequest(body("blend", twoUnits, `{"treatCount":1,"blendPolicies":2}`), "")
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	resp, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := &runner.Response{
		Mode:        runner.ModeBlend,
		Assignments: [][]bool{{true, false}, {true, false}},
		Weights:     []float64{0, 0.5},
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("unexpected response (-want +got):\n%s", diff)
	}
}

func TestRunOptimize(t *testing.T) {
	cfg := `{"treatCount":2,"generations":0,"generationSize":4,"temperatureDecay":1,"seed":7}`
	po := `{"obj1_treated":[10,0,0,10],"obj1_control":[0,10,10,0],"obj2_treated":[1,1,1,1],"obj2_control":[1,1,1,1]}`
	req, err := runner.ParseRequest(body("optimize", po, cfg), "")
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	resp, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff([][]bool{{true, false, false, true}}, resp.Assignments); diff != "" {
		t.Errorf("unexpected assignments (-want +got):\n%s", diff)
	}
}

func TestRunQuotaError(t *testing.T) {
	req, err := runner.ParseRequest(body("optimize", twoUnits, `{"treatCount":3,"generationSize":4}`), "")
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	_, err = runner.Run(context.Background(), req)
	if !errors.Is(err, evolution.ErrInvalidQuota) {
		t.Errorf("Run() error = %v, want %v", err, evolution.ErrInvalidQuota)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: nil, want: http.StatusOK},
		{err: fmt.Errorf("wrapped: %w", runner.ErrInvalidRequest), want: http.StatusBadRequest},
		{err: outcomes.ErrInputShapeMismatch, want: http.StatusBadRequest},
		{err: outcomes.ErrNonFinite, want: http.StatusBadRequest},
		{err: outcomes.ErrMalformedInput, want: http.StatusBadRequest},
		{err: evolution.ErrInvalidQuota, want: http.StatusBadRequest},
		{err: evolution.ErrInvalidConfig, want: http.StatusBadRequest},
		{err: blend.ErrInvalidPolicyCount, want: http.StatusBadRequest},
		{err: fmt.Errorf("run: %w", evolution.ErrDegenerateResult), want: http.StatusUnprocessableEntity},
		{err: context.Canceled, want: http.StatusServiceUnavailable},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := runner.StatusCode(tc.err); got != tc.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
