package options_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"k8s.io/utils/ptr"

	"github.com/policyevo/policyevo/cmd/policyevo/app/options"
	"github.com/policyevo/policyevo/pkg/api/v1alpha1"
)

func TestConfigurationMergesFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	config := `apiVersion: policyevo.io/v1alpha1
kind: OptimizerConfiguration
variant: Fixed
treatCount: 4
generations: 20
mutationFloor: 7
`
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o := options.NewRunOptions()
	o.AddFlags(fs)
	if err := fs.Parse([]string{"--config=" + path, "--generations=50", "--seed=9"}); err != nil {
		t.Fatal(err)
	}

	got, err := o.Configuration()
	if err != nil {
		t.Fatalf("Configuration() error = %v", err)
	}
	want := &v1alpha1.OptimizerConfiguration{
		Variant:       v1alpha1.VariantFixed,
		TreatCount:    4,
		Generations:   ptr.To[int32](50),
		MutationFloor: ptr.To[int32](7),
		Seed:          ptr.To[int64](9),
	}
	want.APIVersion = "policyevo.io/v1alpha1"
	want.Kind = "OptimizerConfiguration"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected configuration (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "input file", args: []string{"--input=in.json"}},
		{name: "synthetic", args: []string{"--synthetic-units=10"}},
		{name: "no input", args: nil, wantErr: true},
		{name: "both inputs", args: []string{"--input=in.json", "--synthetic-units=10"}, wantErr: true},
		{name: "bad format", args: []string{"--input=in.json", "--format=xml"}, wantErr: true},
		{name: "bad tradeoff", args: []string{"--synthetic-units=10", "--synthetic-tradeoff=2"}, wantErr: true},
		{name: "bad sample rate", args: []string{"--input=in.json", "--otel-sample-rate=1.5"}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			o := options.NewRunOptions()
			o.AddFlags(fs)
			if err := fs.Parse(tc.args); err != nil {
				t.Fatal(err)
			}
			if err := o.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
